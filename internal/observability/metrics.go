package observability

import (
	"context"
	"fmt"
	"time"

	"atscore/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all custom metrics. The zero value records nothing, so
// callers never check whether observability is enabled.
type Metrics struct {
	// Scoring metrics
	ScoresTotal     metric.Int64Counter
	OverallScore    metric.Int64Histogram
	ScoringDuration metric.Float64Histogram

	// Cache metrics
	CacheHits   metric.Int64Counter
	CacheMisses metric.Int64Counter

	// AI operation metrics
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter

	flags config.CustomMetricsConfig
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// AIOperationResult holds the result of an AI operation including token usage
type AIOperationResult struct {
	Error      error
	TokenUsage *TokenUsage
}

func newMetrics(meter metric.Meter, flags config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{flags: flags}
	var err error

	int64Counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
	}{
		{&m.ScoresTotal, "atscore_scores_total", "Total number of scored resumes"},
		{&m.CacheHits, "atscore_cache_hits_total", "Report cache hits"},
		{&m.CacheMisses, "atscore_cache_misses_total", "Report cache misses"},
		{&m.AIRequestCount, "atscore_ai_requests_total", "Total number of AI requests"},
		{&m.AIErrorCount, "atscore_ai_errors_total", "Total number of AI request errors"},
		{&m.RateLimitHits, "atscore_rate_limit_hits_total", "Total number of rate limit hits"},
	}
	for _, c := range int64Counters {
		if *c.target, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, fmt.Errorf("failed to create %s metric: %w", c.name, err)
		}
	}

	m.OverallScore, err = meter.Int64Histogram(
		"atscore_overall_score",
		metric.WithDescription("Distribution of overall ATS scores"),
		metric.WithExplicitBucketBoundaries(30, 40, 50, 60, 70, 80, 90, 95),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create overall score metric: %w", err)
	}

	m.ScoringDuration, err = meter.Float64Histogram(
		"atscore_scoring_duration_seconds",
		metric.WithDescription("Time spent scoring one resume"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scoring duration metric: %w", err)
	}

	m.AIProcessingTime, err = meter.Float64Histogram(
		"atscore_ai_processing_duration_seconds",
		metric.WithDescription("Time spent processing AI requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI processing time metric: %w", err)
	}

	m.AITokenUsage, err = meter.Int64Histogram(
		"atscore_ai_token_usage",
		metric.WithDescription("Token usage for AI requests (input, output, total)"),
		metric.WithUnit("tokens"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	return m, nil
}

// RecordScore records one scoring run. source is the endpoint that scored
// it, "api" or "extract".
func (m *Metrics) RecordScore(ctx context.Context, source, grade string, score int, duration time.Duration, withJob bool) {
	if m == nil || m.ScoresTotal == nil || !m.flags.Scoring.Enabled {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("grade", grade),
		attribute.Bool("job_description", withJob),
	)
	m.ScoresTotal.Add(ctx, 1, attrs)
	m.ScoringDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("source", source)))
	if m.flags.Scoring.TrackScoreHistogram {
		m.OverallScore.Record(ctx, int64(score), metric.WithAttributes(attribute.String("source", source)))
	}
}

// RecordCacheLookup counts a report cache hit or miss
func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil || m.CacheHits == nil || !m.flags.Infrastructure.Enabled || !m.flags.Infrastructure.TrackCache {
		return
	}
	if hit {
		m.CacheHits.Add(ctx, 1)
	} else {
		m.CacheMisses.Add(ctx, 1)
	}
}

// RecordRateLimitHit counts a rejected request
func (m *Metrics) RecordRateLimitHit(ctx context.Context, key string) {
	if m == nil || m.RateLimitHits == nil || !m.flags.Infrastructure.Enabled || !m.flags.Infrastructure.TrackRateLimits {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("key_type", key)))
}

// TrackAIOperationWithTokens instruments an AI operation with tracing, metrics, and token usage
func (m *Metrics) TrackAIOperationWithTokens(ctx context.Context, operation string, fn func(context.Context) *AIOperationResult) error {
	if m == nil || m.AIProcessingTime == nil || !m.flags.AIOperations.Enabled {
		if result := fn(ctx); result != nil {
			return result.Error
		}
		return nil
	}

	tracer := otel.Tracer("atscore.ai")
	ctx, span := tracer.Start(ctx, "ai."+operation)
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	duration := time.Since(start).Seconds()

	var err error
	if result != nil {
		err = result.Error
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}
	m.AIProcessingTime.Record(ctx, duration, metric.WithAttributes(attrs...))
	m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
	}
	span.SetAttributes(attrs...)

	if result != nil && result.TokenUsage != nil {
		usage := result.TokenUsage
		if m.flags.AIOperations.TrackTokenUsage {
			for _, tt := range []struct {
				tokenType string
				value     int64
			}{
				{"input", usage.InputTokens},
				{"output", usage.OutputTokens},
				{"total", usage.TotalTokens},
			} {
				m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(
					attribute.String("operation", operation),
					attribute.String("token_type", tt.tokenType),
				))
			}
		}
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
	}

	return err
}
