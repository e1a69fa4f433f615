package server

import (
	"net/http"
	"sync/atomic"

	"atscore/internal/ai"
	"atscore/internal/cache"
	"atscore/internal/config"
	"atscore/internal/errors"
	"atscore/internal/jobfetch"
	"atscore/internal/observability"
	"atscore/internal/scoring"
	"atscore/internal/validation"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string                  `json:"error"`
	Message   string                  `json:"message,omitempty"`
	Fields    []validation.FieldError `json:"fields,omitempty"`
	RequestID string                  `json:"requestId,omitempty"`
}

// Dependencies are the collaborators a Server serves requests with. Only
// Engine is required; a nil Cache never hits, a nil Extractor disables
// /extract and a nil Fetcher disables jobUrl.
type Dependencies struct {
	Engine        *scoring.Engine
	Cache         *cache.ReportCache
	Fetcher       *jobfetch.Fetcher
	Extractor     ai.Extractor
	Observability *observability.ObservabilityManager
}

// Server holds configuration for the HTTP server
type Server struct {
	Version string

	// Full application configuration
	AppConfig *config.Config

	// API Authentication
	APIKeys map[string]bool

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Logger *errors.Logger

	// engine is swapped whole when the lexicon file is reloaded
	engine    atomic.Pointer[scoring.Engine]
	cache     *cache.ReportCache
	fetcher   *jobfetch.Fetcher
	extractor ai.Extractor
	om        *observability.ObservabilityManager
}

// NewServer creates a new Server instance
func NewServer(appCfg *config.Config, deps Dependencies, version string, logger *errors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range appCfg.Server.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	rateLimit := appCfg.Server.RateLimit
	var rateLimiter *RateLimiter
	if rateLimit.Enabled {
		rateLimiter = NewRateLimiter(rateLimit.RequestsPerMin, rateLimit.BurstCapacity, logger)
	}

	s := &Server{
		Version:        version,
		AppConfig:      appCfg,
		APIKeys:        apiKeyMap,
		MaxRequestSize: appCfg.Server.MaxRequestSize,
		RateLimit:      &rateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
		cache:          deps.Cache,
		fetcher:        deps.Fetcher,
		extractor:      deps.Extractor,
		om:             deps.Observability,
	}
	s.engine.Store(deps.Engine)
	return s
}

// Engine returns the engine currently serving requests
func (s *Server) Engine() *scoring.Engine {
	return s.engine.Load()
}

// SetEngine replaces the engine. Requests already running finish on the
// engine they started with.
func (s *Server) SetEngine(engine *scoring.Engine) {
	if engine != nil {
		s.engine.Store(engine)
	}
}

// Handler returns the complete HTTP handler: routes, request ids and
// OpenTelemetry instrumentation.
func (s *Server) Handler() http.Handler {
	return s.om.HTTPMiddleware()(s.requestIDMiddleware(s.setupRoutes()))
}

// Close releases the rate limiter and the extractor
func (s *Server) Close() {
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
	}
	if s.extractor != nil {
		if err := s.extractor.Close(); err != nil {
			s.Logger.LogError(err, "Failed to close extractor")
		}
	}
}
