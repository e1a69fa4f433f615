package ai

import (
	"errors"
	"testing"
	"time"

	"atscore/internal/config"

	"github.com/sony/gobreaker/v2"
)

func breakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      3,
		FailureThreshold: 0.6,
	}
}

func TestCircuitBreakerStats(t *testing.T) {
	cb := NewCircuitBreaker[string]("AI-Extract", breakerConfig(), nil)
	if cb == nil {
		t.Fatal("Circuit breaker should not be nil")
	}

	stats := cb.GetStats()
	if name, _ := stats["name"].(string); name != "AI-Extract" {
		t.Errorf("Expected circuit breaker name 'AI-Extract', got '%v'", stats["name"])
	}
	if state, _ := stats["state"].(string); state != "closed" {
		t.Errorf("Expected initial state 'closed', got '%v'", stats["state"])
	}
	if enabled, _ := stats["enabled"].(bool); !enabled {
		t.Error("Circuit breaker should be enabled")
	}
	if !cb.IsHealthy() {
		t.Error("Circuit breaker should be healthy initially")
	}
}

func TestCircuitBreakerTrips(t *testing.T) {
	cb := NewCircuitBreaker[string]("AI-Trip", breakerConfig(), nil)
	failing := func() (string, error) { return "", errors.New("upstream failure") }

	// Two failures stay below MinRequests.
	for range 2 {
		if _, err := cb.Execute(failing); err == nil {
			t.Fatal("expected the wrapped error")
		}
	}
	if !cb.IsHealthy() {
		t.Fatal("breaker must not trip before MinRequests calls")
	}

	if _, err := cb.Execute(failing); err == nil {
		t.Fatal("expected the wrapped error")
	}
	if cb.IsHealthy() {
		t.Fatal("breaker should be open after three failures")
	}

	called := false
	_, err := cb.Execute(func() (string, error) {
		called = true
		return "ok", nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
	if called {
		t.Error("open breaker must not run the call")
	}
}

func TestModelCircuitBreakerIsLenient(t *testing.T) {
	cb := NewModelCircuitBreaker[int]("AI-Model", breakerConfig(), nil)
	for range 4 {
		_, _ = cb.Execute(func() (int, error) { return 0, errors.New("unavailable") })
	}
	if !cb.IsHealthy() {
		t.Error("model breaker should tolerate four failures")
	}
}

func TestCircuitBreakerDisabled(t *testing.T) {
	cb := NewCircuitBreaker[string]("Disabled", config.CircuitBreakerConfig{Enabled: false}, nil)
	if cb != nil {
		t.Fatal("Circuit breaker should be nil when disabled")
	}

	got, err := cb.Execute(func() (string, error) { return "direct", nil })
	if err != nil || got != "direct" {
		t.Errorf("nil breaker should pass calls through, got %q, %v", got, err)
	}
	if enabled, _ := cb.GetStats()["enabled"].(bool); enabled {
		t.Error("nil breaker should report disabled")
	}
	if !cb.IsHealthy() {
		t.Error("nil breaker should be healthy")
	}
}
