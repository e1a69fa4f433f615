package lexicon

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"atscore/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a lexicon file when it changes on disk and hands every
// successfully built Store to a callback. A file that fails to load is
// logged and ignored, so the previous Store stays in use.
type Watcher struct {
	mu sync.Mutex

	path          string
	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	onReload func(*Store)
	logger   *errors.Logger

	running bool
}

// NewWatcher creates a watcher for path. debounceDelay collapses bursts of
// write events from editors into one reload; zero means one second.
func NewWatcher(path string, debounceDelay time.Duration, onReload func(*Store), logger *errors.Logger) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("lexicon watcher needs a file path")
	}
	if onReload == nil {
		return nil, fmt.Errorf("lexicon watcher needs a reload callback")
	}
	if debounceDelay == 0 {
		debounceDelay = time.Second
	}

	return &Watcher{
		path:          filepath.Clean(path),
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		onReload:      onReload,
		logger:        logger,
	}, nil
}

// Start begins watching. The directory is watched too so atomic
// rename-into-place writes are seen.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("lexicon watcher is already running")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		_ = fsWatcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.fsWatcher = fsWatcher

	w.running = true
	go w.watchLoop()

	if w.logger != nil {
		w.logger.Info("Lexicon file watcher started", "file", w.path, "debounce_delay", w.debounceDelay)
	}
	return nil
}

// Stop stops watching. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	close(w.stopChan)
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.running = false

	if err := w.fsWatcher.Close(); err != nil {
		return fmt.Errorf("failed to close file watcher: %w", err)
	}
	if w.logger != nil {
		w.logger.Info("Lexicon file watcher stopped")
	}
	return nil
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.isRelevant(event) {
				w.scheduleReload()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.LogError(err, "Lexicon watcher error")
			}

		case <-w.reloadChan:
			w.reload()

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) isRelevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		select {
		case w.reloadChan <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) reload() {
	store, err := LoadFile(w.path)
	if err != nil {
		if w.logger != nil {
			w.logger.LogError(err, "Lexicon reload failed, keeping previous tables")
		}
		return
	}
	if w.logger != nil {
		w.logger.Info("Lexicon reloaded", "file", w.path, "version", store.Version())
	}
	w.onReload(store)
}
