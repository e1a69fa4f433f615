package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"atscore/internal/lexicon"
	"atscore/internal/scoring"
)

const shutdownTimeout = 30 * time.Second

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	httpServer, err := s.setupHTTPServer()
	if err != nil {
		return err
	}

	if err := s.configureTLS(httpServer); err != nil {
		return err
	}

	stopWatcher, err := s.startLexiconWatcher()
	if err != nil {
		return err
	}
	defer stopWatcher()

	s.displayServerInfo()

	return s.startWithGracefulShutdown(ctx, httpServer)
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer() (*http.Server, error) {
	if s.Engine() == nil {
		return nil, fmt.Errorf("server needs a scoring engine")
	}
	cfg := s.AppConfig.Server

	return &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}, nil
}

// startLexiconWatcher hot-swaps the engine when the lexicon file changes.
// The returned function stops the watcher.
func (s *Server) startLexiconWatcher() (func(), error) {
	lexCfg := s.AppConfig.Lexicon
	if !lexCfg.Watch || lexCfg.File == "" {
		return func() {}, nil
	}

	watcher, err := lexicon.NewWatcher(lexCfg.File, lexCfg.DebounceDelay, s.reloadLexicon, s.Logger)
	if err != nil {
		return nil, err
	}
	if err := watcher.Start(); err != nil {
		return nil, err
	}
	return func() {
		if err := watcher.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop lexicon watcher")
		}
	}, nil
}

// reloadLexicon rebuilds the engine around store with the running
// configuration
func (s *Server) reloadLexicon(store *lexicon.Store) {
	engine, err := scoring.New(store, s.Engine().Config())
	if err != nil {
		s.Logger.LogError(err, "Rejected reloaded lexicon")
		return
	}
	s.SetEngine(engine)
	s.Logger.Info("Scoring engine reloaded", "lexicon_version", store.Version())
}

// startWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func (s *Server) startWithGracefulShutdown(ctx context.Context, server *http.Server) error {
	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", server.Addr,
			"tls_enabled", server.TLSConfig != nil)

		var err error
		if server.TLSConfig != nil {
			// Certificates are already loaded into the TLS config
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		s.Close()
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		s.Logger.Info("Received shutdown signal, starting graceful shutdown")
		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	defer s.Close()

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}
