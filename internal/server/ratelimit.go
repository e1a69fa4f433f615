package server

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"atscore/internal/errors"

	"golang.org/x/time/rate"
)

const (
	clientIdleTimeout = 10 * time.Minute
	retryAfterSeconds = 60
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds a token bucket per caller. Buckets idle for longer
// than clientIdleTimeout are dropped by a background sweep.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*client

	stop     chan struct{}
	stopOnce sync.Once
	logger   *errors.Logger
}

// NewRateLimiter allows requestsPerMin per caller with bursts of up to
// burst requests
func NewRateLimiter(requestsPerMin, burst int, logger *errors.Logger) *RateLimiter {
	rl := &RateLimiter{
		limit:   rate.Limit(float64(requestsPerMin) / 60),
		burst:   max(burst, 1),
		clients: make(map[string]*client),
		stop:    make(chan struct{}),
		logger:  logger,
	}
	go rl.sweepLoop()
	return rl
}

// Allow takes a token from key's bucket without blocking
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = time.Now()
	rl.mu.Unlock()

	return c.limiter.Allow()
}

// GetStats describes the limiter for /stats
func (rl *RateLimiter) GetStats() map[string]any {
	rl.mu.Lock()
	active := len(rl.clients)
	rl.mu.Unlock()

	return map[string]any{
		"enabled":         true,
		"active_limiters": active,
		"rate_per_second": float64(rl.limit),
		"rate_per_minute": float64(rl.limit) * 60,
		"burst_capacity":  rl.burst,
	}
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(clientIdleTimeout)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			rl.sweep(now.Add(-clientIdleTimeout))
		case <-rl.stop:
			return
		}
	}
}

// sweep forgets callers not seen since cutoff
func (rl *RateLimiter) sweep(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
	if rl.logger != nil {
		rl.logger.Debug("Rate limiter sweep completed", "remaining_limiters", len(rl.clients))
	}
}

// Close stops the sweep. Calling it again is a no-op.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// rateLimitMiddleware answers 429 once a caller has spent its budget
func (s *Server) rateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimit == nil || !s.RateLimit.Enabled || s.RateLimiter == nil {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}
	byAPIKey, byIP := s.RateLimit.ByAPIKey, s.RateLimit.ByIP

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := getRateLimitKey(r, byAPIKey, byIP)
			if key == "" || s.RateLimiter.Allow(key) {
				next(w, r)
				return
			}

			keyType, _, _ := strings.Cut(key, ":")
			s.om.GetMetrics().RecordRateLimitHit(r.Context(), keyType)
			s.Logger.Info("Rate limit exceeded",
				"key_type", keyType,
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r))
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
			writeErrorResponse(w, r, "Rate limit exceeded", "Too many requests", http.StatusTooManyRequests)
		}
	}
}

// getRateLimitKey buckets by API key when one is sent, else by client IP.
// An empty key means the request is not limited.
func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		if apiKey := apiKeyFromRequest(r); apiKey != "" {
			return "api:" + apiKey
		}
	}
	if byIP {
		return "ip:" + getClientIP(r)
	}
	return ""
}

// getClientIP trusts X-Forwarded-For, then X-Real-IP, then the peer address
func getClientIP(r *http.Request) string {
	if ip := parseFirstIP(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip
	}
	if ip := parseFirstIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP returns the first valid address of a comma separated list
func parseFirstIP(list string) string {
	for candidate := range strings.SplitSeq(list, ",") {
		candidate = strings.TrimSpace(candidate)
		if net.ParseIP(candidate) != nil {
			return candidate
		}
	}
	return ""
}
