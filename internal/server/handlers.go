package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"atscore/internal/ai"
	"atscore/internal/cache"
	"atscore/internal/errors"
	"atscore/internal/jobfetch"
	"atscore/internal/observability"
	"atscore/internal/types"
	"atscore/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "atscore.api"

// analyzeHandler scores a structured resume, optionally against a job
// description given inline or as a URL to fetch
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.om.Tracer(tracerName).Start(r.Context(), "api.analyze")
	defer span.End()
	start := time.Now()

	var req types.AnalyzeRequest
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, r, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.ResumeData) == 0 || string(req.ResumeData) == "null" {
		writeErrorResponse(w, r, "Missing resume", "resumeData field is required", http.StatusBadRequest)
		return
	}

	if err := validation.Structure(req.ResumeData); err != nil {
		s.writeAppError(w, r, span, err)
		return
	}
	var resume types.Resume
	if err := json.Unmarshal(req.ResumeData, &resume); err != nil {
		s.writeAppError(w, r, span, errors.NewInvalidInputError("resume could not be decoded", err))
		return
	}

	jobDescription := req.JobDescription
	if jobDescription == nil && strings.TrimSpace(req.JobURL) != "" {
		posting, err := s.fetchPosting(ctx, req.JobURL)
		if err != nil {
			s.writeAppError(w, r, span, err)
			return
		}
		jobDescription = &posting.Text
		span.SetAttributes(attribute.String("job.url", posting.URL))
	}

	report, cached, err := s.scoreResume(ctx, &resume, jobDescription)
	if err != nil {
		s.writeAppError(w, r, span, err)
		return
	}
	elapsed := time.Since(start)
	if !cached {
		s.om.GetMetrics().RecordScore(ctx, "api", report.Grade, report.OverallScore, elapsed, jobDescription != nil)
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Bool("cached", cached),
		attribute.Int("ats.score", report.OverallScore),
		attribute.String("ats.grade", report.Grade),
	)

	writeJSON(w, http.StatusOK, types.AnalyzeResponse{
		Success:        true,
		Report:         report,
		AnalysisTimeMs: float64(elapsed.Microseconds()) / 1000,
		Cached:         cached,
		RequestID:      requestID(ctx),
	})
}

// scoreResume scores through the report cache. Cache failures are logged
// and never fail the request.
func (s *Server) scoreResume(ctx context.Context, resume *types.Resume, jobDescription *string) (*types.Report, bool, error) {
	engine := s.Engine()

	var key string
	if s.cache != nil {
		var err error
		key, err = cache.Key(resume, jobDescription, engine.LexiconVersion(), engine.Config())
		if err != nil {
			s.Logger.Warn("Failed to derive cache key", "error", err)
		} else {
			report, hit, err := s.cache.Get(ctx, key)
			if err != nil {
				s.Logger.Warn("Report cache lookup failed", "error", err)
			}
			s.om.GetMetrics().RecordCacheLookup(ctx, hit)
			if hit {
				return report, true, nil
			}
		}
	}

	report, err := engine.Score(resume, jobDescription)
	if err != nil {
		return nil, false, err
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, report); err != nil {
			s.Logger.Warn("Failed to store report", "error", err)
		}
	}
	return report, false, nil
}

func (s *Server) fetchPosting(ctx context.Context, url string) (*jobfetch.Posting, error) {
	if s.fetcher == nil {
		return nil, errors.NewInvalidInputError("jobUrl is not supported by this server", nil)
	}
	ctx, span := s.om.Tracer(tracerName).Start(ctx, "jobfetch.fetch")
	defer span.End()

	posting, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		span.RecordError(err)
		if jobfetch.IsInvalidURL(err) {
			return nil, errors.NewInvalidInputError("jobUrl must be an absolute http or https URL", err)
		}
		return nil, errors.NewNetworkError(errors.ErrCodeFetchFailed, "failed to fetch job posting", err)
	}
	return posting, nil
}

// validateHandler reports structural problems and missing content without
// scoring
func (s *Server) validateHandler(w http.ResponseWriter, r *http.Request) {
	_, span := s.om.Tracer(tracerName).Start(r.Context(), "api.validate")
	defer span.End()

	var payload json.RawMessage
	if err := parseJSONRequest(r, &payload); err != nil {
		span.RecordError(err)
		writeErrorResponse(w, r, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	result, err := validation.Validate(payload)
	if err != nil {
		s.writeAppError(w, r, span, err)
		return
	}
	span.SetAttributes(attribute.Bool("valid", result.Valid))
	writeJSON(w, http.StatusOK, result)
}

// extractHandler structures plain resume text with the AI model and scores
// the result
func (s *Server) extractHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.om.Tracer(tracerName).Start(r.Context(), "api.extract")
	defer span.End()

	if s.extractor == nil {
		writeErrorResponse(w, r, "Extraction unavailable", "no AI model is configured on this server", http.StatusServiceUnavailable)
		return
	}

	var req types.ExtractRequest
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		writeErrorResponse(w, r, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeErrorResponse(w, r, "Missing resume text", "text field is required", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("request.text_length", len(req.Text)))

	var resume *types.Resume
	err := s.om.GetMetrics().TrackAIOperationWithTokens(ctx, "extract_resume", func(ctx context.Context) *observability.AIOperationResult {
		var usage *ai.TokenUsage
		var aiErr error
		resume, usage, aiErr = s.extractor.ExtractResume(ctx, req.Text)
		return &observability.AIOperationResult{
			Error:      aiErr,
			TokenUsage: (*observability.TokenUsage)(usage),
		}
	})
	if err != nil {
		s.writeAppError(w, r, span, err)
		return
	}

	start := time.Now()
	report, err := s.Engine().Score(resume, req.JobDescription)
	if err != nil {
		s.writeAppError(w, r, span, err)
		return
	}
	s.om.GetMetrics().RecordScore(ctx, "extract", report.Grade, report.OverallScore, time.Since(start), req.JobDescription != nil)

	span.SetAttributes(attribute.Bool("success", true), attribute.Int("ats.score", report.OverallScore))
	writeJSON(w, http.StatusOK, types.ExtractResponse{Resume: resume, Report: report})
}

// writeAppError maps an error to its HTTP status. Invalid input is the
// caller's fault; failures of the model or a remote site are upstream
// failures.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, span trace.Span, err error) {
	span.RecordError(err)

	if errors.IsInvalidInput(err) {
		var appErr *errors.AppError
		errors.As(err, &appErr)
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorBody(w, http.StatusBadRequest, ErrorResponse{
			Error:     "Invalid input",
			Message:   appErr.Message,
			Fields:    validation.FieldErrors(err),
			RequestID: requestID(r.Context()),
		})
		return
	}

	status := http.StatusInternalServerError
	title := "Internal error"
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case errors.ErrorTypeAI:
			status, title = http.StatusBadGateway, "AI service failed"
		case errors.ErrorTypeNetwork:
			status, title = http.StatusBadGateway, "Upstream request failed"
		}
	}
	span.SetAttributes(attribute.String("error.type", "upstream"))
	s.Logger.LogError(err, "Request failed",
		"endpoint", r.URL.Path,
		"status", status,
		"request_id", requestID(r.Context()))
	writeErrorResponse(w, r, title, err.Error(), status)
}
