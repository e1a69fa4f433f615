package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"time"
)

const healthCheckTimeout = 5 * time.Second

// healthHandler reports the scoring engine, the cache and the AI model.
// Scoring needs neither collaborator, so a missing model degrades the
// status without failing the check.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	engine := s.Engine()
	response := map[string]any{
		"status":          "healthy",
		"service":         "atscore",
		"version":         s.Version,
		"lexicon_version": engine.LexiconVersion(),
		"cache":           s.cacheStatus(),
	}

	aiStatus := s.checkAIModelHealth(r.Context())
	response["ai_model"] = aiStatus
	if available, ok := aiStatus["available"].(bool); ok && !available {
		response["status"] = "degraded"
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) cacheStatus() map[string]any {
	if s.cache == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"enabled":   true,
		"addr":      s.AppConfig.Cache.Addr,
		"namespace": s.AppConfig.Cache.Namespace,
		"ttl":       s.AppConfig.Cache.TTL.String(),
	}
}

// checkAIModelHealth asks the extraction model whether it is reachable
func (s *Server) checkAIModelHealth(ctx context.Context) map[string]any {
	if s.extractor == nil {
		return map[string]any{"configured": false}
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	info := s.extractor.GetModelInfo(ctx)
	status := map[string]any{
		"configured": true,
		"provider":   s.AppConfig.AI.Provider,
		"name":       info.Name,
		"available":  info.Available,
	}
	if info.DisplayName != "" {
		status["display_name"] = info.DisplayName
	}
	if info.Error != "" {
		status["error"] = info.Error
	}
	return status
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	engine := s.Engine()
	response := map[string]any{
		"service": "atscore",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
		"lexicon": map[string]any{
			"version": engine.LexiconVersion(),
			"tables":  engine.Lexicon().Stats(),
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if cb, ok := s.extractor.(interface{ GetCircuitBreakerStats() map[string]any }); ok {
		response["circuit_breakers"] = cb.GetCircuitBreakerStats()
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// parseJSONRequest parses JSON request body into the provided value
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, r *http.Request, error, message string, statusCode int) {
	writeErrorBody(w, statusCode, ErrorResponse{
		Error:     error,
		Message:   message,
		RequestID: requestID(r.Context()),
	})
}

func writeErrorBody(w http.ResponseWriter, statusCode int, body ErrorResponse) {
	writeJSON(w, statusCode, body)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
