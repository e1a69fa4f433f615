package ai

import (
	"context"

	"atscore/internal/types"
)

// Extractor turns free resume text into a structured resume
// Token usage may be nil when the provider does not report it
type Extractor interface {
	ExtractResume(ctx context.Context, text string) (*types.Resume, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
