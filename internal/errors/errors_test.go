package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestIsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"direct", NewInvalidInputError("not an object", nil), true},
		{"wrapped", fmt.Errorf("scoring: %w", NewInvalidInputError("nil resume", nil)), true},
		{"other app error", NewIOError(ErrCodeFileNotFound, "missing", nil), false},
		{"plain error", fmt.Errorf("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInvalidInput(tt.err); got != tt.want {
				t.Errorf("IsInvalidInput() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	cause := fmt.Errorf("unexpected EOF")
	err := NewInvalidInputError("payload is not valid JSON", cause)

	if err.Type != ErrorTypeValidation {
		t.Errorf("Type = %s, want %s", err.Type, ErrorTypeValidation)
	}
	want := "INVALID_INPUT: payload is not valid JSON (caused by: unexpected EOF)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
}

func TestLoggerLogErrorIncludesContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelDebug)

	appErr := NewNetworkError(ErrCodeFetchFailed, "job page unavailable", nil).WithContext("url", "https://example.com/job")
	logger.LogError(appErr, "fetch failed", "attempt", 2)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["error_code"] != ErrCodeFetchFailed {
		t.Errorf("error_code = %v", entry["error_code"])
	}
	if entry["url"] != "https://example.com/job" {
		t.Errorf("url = %v", entry["url"])
	}
	if entry["attempt"] != float64(2) {
		t.Errorf("attempt = %v", entry["attempt"])
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("verbose"); err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("expected invalid log level error, got %v", err)
	}
	for _, level := range []string{"debug", "info", "warn", "error"} {
		if _, err := New(level); err != nil {
			t.Errorf("New(%q) returned error: %v", level, err)
		}
	}
}
