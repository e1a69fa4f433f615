package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"atscore/internal/config"
	atsErrors "atscore/internal/errors"
	"atscore/internal/types"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const (
	modelCheckTimeout = 10 * time.Second
	maxBackoff        = 30 * time.Second
)

// contentGenerator is the part of genai.Models the extractor calls
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

// GeminiExtractor implements Extractor on Google Gemini
type GeminiExtractor struct {
	models         contentGenerator
	config         config.AIConfig
	circuitBreaker *CircuitBreaker[*genai.GenerateContentResponse]
	modelBreaker   *CircuitBreaker[*genai.Model]
	logger         *atsErrors.Logger
	retryBaseDelay time.Duration
	newID          func() string
}

// Ensure GeminiExtractor implements Extractor
var _ Extractor = (*GeminiExtractor)(nil)

// NewGeminiExtractor creates a Gemini client from cfg
func NewGeminiExtractor(cfg config.AIConfig, logger *atsErrors.Logger) (*GeminiExtractor, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, atsErrors.NewAIError(atsErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}
	return newGeminiExtractor(client.Models, cfg, logger), nil
}

func newGeminiExtractor(models contentGenerator, cfg config.AIConfig, logger *atsErrors.Logger) *GeminiExtractor {
	return &GeminiExtractor{
		models:         models,
		config:         cfg,
		circuitBreaker: NewCircuitBreaker[*genai.GenerateContentResponse]("AI-Extract", cfg.CircuitBreaker, logger),
		modelBreaker:   NewModelCircuitBreaker[*genai.Model]("AI-Model-Extract", cfg.CircuitBreaker, logger),
		logger:         logger,
		retryBaseDelay: time.Second,
		newID:          shortID,
	}
}

// shortID returns the first 8 characters of a random UUID
func shortID() string {
	return uuid.New().String()[:8]
}

// ExtractResume asks the model for a structured resume and normalizes it
func (g *GeminiExtractor) ExtractResume(ctx context.Context, text string) (*types.Resume, *TokenUsage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, atsErrors.NewValidationError(atsErrors.ErrCodeInvalidInput,
			"resume text is empty", nil)
	}

	tracer := otel.Tracer("atscore.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.extract_resume")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(g.config.Temperature)),
		attribute.Int("input.text_length", len(text)),
	)

	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	genaiConfig := g.buildExtractSchema()
	genaiConfig.SystemInstruction = genai.NewContentFromText(ExtractSystemPrompt, genai.RoleUser)
	prompt := BuildExtractPrompt(text)

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, "extract_resume", func() (*genai.GenerateContentResponse, error) {
			return g.models.GenerateContent(ctx, g.config.Model, genai.Text(prompt), genaiConfig)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, nil, atsErrors.NewAIError(atsErrors.ErrCodeAIServiceFailed,
			"Failed to generate content for extract_resume", err)
	}

	var resume types.Resume
	if err := json.Unmarshal([]byte(result.Text()), &resume); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, nil, atsErrors.NewAIError("AI_RESPONSE_PARSE_FAILED",
			"Failed to parse AI response for extract_resume", err)
	}
	if strings.TrimSpace(resume.PersonalInfo.Name) == "" {
		span.SetAttributes(attribute.Bool("success", false))
		return nil, nil, atsErrors.NewAIError("AI_RESPONSE_INVALID",
			"AI response has no candidate name", nil)
	}
	normalizeExtracted(&resume, g.newID)

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.experience_count", len(resume.Experience)),
		attribute.Int("output.education_count", len(resume.Education)),
	)

	return &resume, tokenUsage, nil
}

// normalizeExtracted assigns entry ids and mirrors "present" end dates into
// the current flag
func normalizeExtracted(r *types.Resume, newID func() string) {
	r.PersonalInfo.Name = strings.TrimSpace(r.PersonalInfo.Name)
	for i := range r.Experience {
		e := &r.Experience[i]
		e.ID = newID()
		if strings.EqualFold(strings.TrimSpace(e.EndDate), "present") {
			e.EndDate = "present"
			e.Current = true
		}
	}
	for i := range r.Education {
		r.Education[i].ID = newID()
	}
	for i := range r.Skills {
		r.Skills[i].ID = newID()
	}
	for i := range r.Projects {
		r.Projects[i].ID = newID()
	}
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiExtractor) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	modelInfo.DisplayName = model.DisplayName
	modelInfo.Version = model.Version

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiExtractor) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetStats(),
		"overall_healthy":  g.circuitBreaker.IsHealthy() && g.modelBreaker.IsHealthy(),
	}
}

// Close implements Extractor. The genai client holds no resources in
// single-shot mode.
func (g *GeminiExtractor) Close() error {
	return nil
}

// executeWithRetry executes an AI operation with retry logic and exponential backoff
func (g *GeminiExtractor) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", g.config.MaxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(g.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", g.config.MaxRetries+1)

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, g.config.MaxRetries, lastErr)
}

// backoff doubles the base delay per attempt and adds up to 10% jitter
func (g *GeminiExtractor) backoff(attempt int) time.Duration {
	baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * g.retryBaseDelay
	var jitter time.Duration
	if jitterMax := int64(float64(baseDelay) * 0.1); jitterMax > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(jitterMax)); err == nil {
			jitter = time.Duration(n.Int64())
		}
	}
	return min(baseDelay+jitter, maxBackoff)
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Timeouts and connection failures are transient
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// buildExtractSchema creates the response schema of an extracted resume
func (g *GeminiExtractor) buildExtractSchema() *genai.GenerateContentConfig {
	str := func(desc string) *genai.Schema { return &genai.Schema{Type: genai.TypeString, Description: desc} }
	strList := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: desc}
	}
	const dateDesc = "YYYY-MM or YYYY, or 'present'"

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"personalInfo": {
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":     str("Full name"),
						"title":    str(""),
						"email":    str(""),
						"phone":    str(""),
						"location": str(""),
						"website":  str(""),
						"linkedin": str(""),
						"github":   str(""),
					},
					Required: []string{"name"},
				},
				"summary": str("Professional summary"),
				"experience": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"company":     str(""),
							"position":    str(""),
							"location":    str(""),
							"startDate":   str(dateDesc),
							"endDate":     str(dateDesc),
							"current":     {Type: genai.TypeBoolean},
							"description": strList("Bullet points of responsibilities and achievements"),
						},
						Required: []string{"company", "position"},
					},
				},
				"education": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"institution": str("School, college or university"),
							"degree":      str("Degree type, e.g. BS or PhD"),
							"field":       str("Field of study"),
							"location":    str(""),
							"startDate":   str(dateDesc),
							"endDate":     str(dateDesc),
							"gpa":         str(""),
							"highlights":  strList("Honors or relevant coursework"),
						},
						Required: []string{"institution", "degree"},
					},
				},
				"skills": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"category": str(""),
							"items":    strList(""),
						},
						Required: []string{"category", "items"},
					},
				},
				"projects": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"name":         str(""),
							"description":  str(""),
							"technologies": strList("Technologies, frameworks and tools used"),
							"link":         str(""),
							"startDate":    str(dateDesc),
							"endDate":      str(dateDesc),
						},
						Required: []string{"name"},
					},
				},
			},
			Required: []string{"personalInfo", "experience", "education", "skills"},
		},
	}

	if g.config.Temperature > 0 {
		config.Temperature = &g.config.Temperature
	}

	return config
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
