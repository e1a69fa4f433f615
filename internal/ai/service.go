package ai

import (
	"fmt"

	"atscore/internal/config"
	"atscore/internal/errors"
)

// NewExtractor creates the extractor for the configured provider
func NewExtractor(cfg config.AIConfig, logger *errors.Logger) (Extractor, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"AI API key is not configured", nil)
	}

	logger.Debug("Initializing AI extractor",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"temperature", cfg.Temperature,
		"timeout", cfg.Timeout,
		"max_retries", cfg.MaxRetries)

	switch cfg.Provider {
	case "gemini":
		extractor, err := NewGeminiExtractor(cfg, logger)
		if err != nil {
			return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
				"Failed to create AI provider", err)
		}
		return extractor, nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
}
