// Package cache memoizes score reports in Redis. Reports are pure functions
// of the request, the lexicon and the engine configuration, so a hit is
// always exactly what scoring would have produced.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"atscore/internal/config"
	"atscore/internal/errors"
	"atscore/internal/scoring"
	"atscore/internal/types"

	"github.com/ecodeclub/ecache"
	eredis "github.com/ecodeclub/ecache/redis"
	"github.com/redis/go-redis/v9"
)

// Store is the string key/value surface the report cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
}

// ecacheStore adapts an ecache.Cache.
type ecacheStore struct {
	ec ecache.Cache
}

// NewECacheStore namespaces ec and exposes it as a Store.
func NewECacheStore(ec ecache.Cache, namespace string) Store {
	return &ecacheStore{
		ec: &ecache.NamespaceCache{
			C:         ec,
			Namespace: namespace,
		},
	}
}

func (s *ecacheStore) Get(ctx context.Context, key string) (string, bool, error) {
	val := s.ec.Get(ctx, key)
	if val.KeyNotFound() {
		return "", false, nil
	}
	if val.Err != nil {
		return "", false, val.Err
	}
	str, ok := val.Val.(string)
	if !ok {
		return "", false, fmt.Errorf("cache value for %s is %T, not a string", key, val.Val)
	}
	return str, true, nil
}

func (s *ecacheStore) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	return s.ec.Set(ctx, key, value, expiration)
}

// ReportCache stores JSON-encoded reports. A nil *ReportCache is a valid,
// always-missing cache.
type ReportCache struct {
	store Store
	ttl   time.Duration
}

// New wraps store with the given entry lifetime.
func New(store Store, ttl time.Duration) *ReportCache {
	return &ReportCache{store: store, ttl: ttl}
}

// NewRedis connects to Redis and returns the cache with a close function.
// It returns a nil cache when caching is disabled.
func NewRedis(ctx context.Context, cfg config.CacheConfig) (*ReportCache, func() error, error) {
	if !cfg.Enabled {
		return nil, func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, errors.NewNetworkError(errors.ErrCodeCacheUnavailable,
			fmt.Sprintf("cannot reach redis at %s", cfg.Addr), err)
	}

	store := NewECacheStore(eredis.NewCache(client), cfg.Namespace)
	return New(store, cfg.TTL), client.Close, nil
}

// Get returns the cached report for key. A miss is (nil, false, nil).
func (c *ReportCache) Get(ctx context.Context, key string) (*types.Report, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	var report types.Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, false, fmt.Errorf("decode cached report %s: %w", key, err)
	}
	return &report, true, nil
}

// Set stores report under key.
func (c *ReportCache) Set(ctx context.Context, key string, report *types.Report) error {
	if c == nil || report == nil {
		return nil
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return c.store.Set(ctx, key, string(data), c.ttl)
}

// Key derives the cache key of a scoring request. A nil job description and
// an empty one produce different keys since they score differently. The
// engine configuration is part of the key, so reweighting or regrading never
// serves a report built under the old rules.
func Key(resume *types.Resume, jobDescription *string, lexiconVersion string, scoringCfg scoring.Config) (string, error) {
	payload, err := json.Marshal(resume)
	if err != nil {
		return "", fmt.Errorf("encode resume: %w", err)
	}
	settings, err := json.Marshal(scoringCfg)
	if err != nil {
		return "", fmt.Errorf("encode scoring config: %w", err)
	}

	h := sha256.New()
	h.Write(payload)
	h.Write([]byte{0})
	if jobDescription == nil {
		h.Write([]byte("nojd"))
	} else {
		h.Write([]byte("jd:"))
		h.Write([]byte(*jobDescription))
	}
	h.Write([]byte{0})
	h.Write([]byte(lexiconVersion))
	h.Write([]byte{0})
	h.Write(settings)
	return "report:" + hex.EncodeToString(h.Sum(nil)), nil
}
