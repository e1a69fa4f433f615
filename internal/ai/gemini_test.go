package ai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"atscore/internal/config"
	atsErrors "atscore/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

var testLogger = atsErrors.NewLoggerWithWriter(io.Discard, 0)

// fakeModels replays scripted responses, one per GenerateContent call
type fakeModels struct {
	mu       sync.Mutex
	replies  []reply
	calls    int
	prompts  []string
	model    *genai.Model
	modelErr error
}

type reply struct {
	text string
	err  error
}

func (f *fakeModels) GenerateContent(_ context.Context, _ string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompts = append(f.prompts, contents[0].Parts[0].Text)
	}
	r := f.replies[min(f.calls, len(f.replies)-1)]
	f.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: r.text}}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     120,
			CandidatesTokenCount: 80,
			TotalTokenCount:      200,
		},
	}, nil
}

func (f *fakeModels) Get(context.Context, string, *genai.GetModelConfig) (*genai.Model, error) {
	return f.model, f.modelErr
}

func testAIConfig() config.AIConfig {
	return config.AIConfig{
		Provider:    "gemini",
		Model:       "gemini-test",
		Timeout:     5 * time.Second,
		APIKey:      "key",
		MaxRetries:  2,
		Temperature: 0.1,
	}
}

func newTestExtractor(models *fakeModels, cfg config.AIConfig) *GeminiExtractor {
	g := newGeminiExtractor(models, cfg, testLogger)
	g.retryBaseDelay = time.Millisecond
	return g
}

const extractedJSON = `{
  "personalInfo": {"name": " Jane Doe ", "email": "jane@example.com"},
  "experience": [
    {"company": "Acme", "position": "Engineer", "startDate": "2021-03", "endDate": "Present", "description": ["Built APIs in Go"]},
    {"company": "Initech", "position": "Intern", "startDate": "2019", "endDate": "2020"}
  ],
  "education": [{"institution": "State University", "degree": "BS", "field": "Computer Science"}],
  "skills": [{"category": "Languages", "items": ["Go", "Python"]}],
  "projects": []
}`

func TestExtractResume(t *testing.T) {
	models := &fakeModels{replies: []reply{{text: extractedJSON}}}
	g := newTestExtractor(models, testAIConfig())

	resume, usage, err := g.ExtractResume(context.Background(), "Jane Doe\nEngineer at Acme, 50% faster builds")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", resume.PersonalInfo.Name)
	require.Len(t, resume.Experience, 2)

	current := resume.Experience[0]
	assert.True(t, current.Current)
	assert.Equal(t, "present", current.EndDate)
	assert.False(t, resume.Experience[1].Current)

	ids := map[string]bool{}
	for _, id := range []string{current.ID, resume.Experience[1].ID, resume.Education[0].ID, resume.Skills[0].ID} {
		assert.Len(t, id, 8)
		ids[id] = true
	}
	assert.Len(t, ids, 4, "entry ids are unique")

	require.NotNil(t, usage)
	assert.Equal(t, int64(200), usage.TotalTokens)

	require.Len(t, models.prompts, 1)
	assert.Contains(t, models.prompts[0], "50% faster builds", "resume text is inserted literally")
	assert.NotContains(t, models.prompts[0], "%RESUME%")
}

func TestExtractResumeRetries(t *testing.T) {
	unavailable := &googleapi.Error{Code: http.StatusServiceUnavailable}
	badRequest := &googleapi.Error{Code: http.StatusBadRequest}

	tests := []struct {
		name      string
		replies   []reply
		wantCalls int
		wantErr   bool
	}{
		{"succeeds after transient failures", []reply{{err: unavailable}, {err: unavailable}, {text: extractedJSON}}, 3, false},
		{"gives up after max retries", []reply{{err: unavailable}}, 3, true},
		{"does not retry client errors", []reply{{err: badRequest}}, 1, true},
		{"does not retry unknown errors", []reply{{err: errors.New("boom")}}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models := &fakeModels{replies: tt.replies}
			_, _, err := newTestExtractor(models, testAIConfig()).ExtractResume(context.Background(), "Jane Doe")
			assert.Equal(t, tt.wantCalls, models.calls)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var appErr *atsErrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, atsErrors.ErrorTypeAI, appErr.Type)
		})
	}
}

func TestExtractResumeRejectsBadOutput(t *testing.T) {
	tests := []struct {
		name string
		text string
		code string
	}{
		{"not json", "Sure! Here is the resume:", "AI_RESPONSE_PARSE_FAILED"},
		{"no name", `{"personalInfo": {"name": "  "}}`, "AI_RESPONSE_INVALID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models := &fakeModels{replies: []reply{{text: tt.text}}}
			_, _, err := newTestExtractor(models, testAIConfig()).ExtractResume(context.Background(), "text")
			var appErr *atsErrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestExtractResumeEmptyText(t *testing.T) {
	models := &fakeModels{replies: []reply{{text: extractedJSON}}}
	_, _, err := newTestExtractor(models, testAIConfig()).ExtractResume(context.Background(), " \n ")
	assert.Error(t, err)
	assert.Zero(t, models.calls)
}

func TestExtractResumeCircuitBreaker(t *testing.T) {
	cfg := testAIConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreaker = breakerConfig()

	models := &fakeModels{replies: []reply{{err: errors.New("down")}}}
	g := newTestExtractor(models, cfg)
	for range 3 {
		_, _, _ = g.ExtractResume(context.Background(), "Jane Doe")
	}
	require.Equal(t, 3, models.calls)

	_, _, err := g.ExtractResume(context.Background(), "Jane Doe")
	assert.Error(t, err)
	assert.Equal(t, 3, models.calls, "open breaker short-circuits the call")

	stats := g.GetCircuitBreakerStats()
	assert.Equal(t, false, stats["overall_healthy"])
}

func TestGetModelInfo(t *testing.T) {
	g := newTestExtractor(&fakeModels{model: &genai.Model{DisplayName: "Gemini Test", Version: "001"}}, testAIConfig())
	info := g.GetModelInfo(context.Background())
	assert.True(t, info.Available)
	assert.Equal(t, "Gemini Test", info.DisplayName)
	assert.Equal(t, "gemini-test", info.Name)

	g = newTestExtractor(&fakeModels{modelErr: errors.New("permission denied")}, testAIConfig())
	info = g.GetModelInfo(context.Background())
	assert.False(t, info.Available)
	assert.True(t, strings.Contains(info.Error, "permission denied"))
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{&googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{&googleapi.Error{Code: http.StatusGatewayTimeout}, true},
		{&googleapi.Error{Code: http.StatusUnauthorized}, false},
		{context.Canceled, false},
	}
	for _, tt := range tests {
		if got := isRetryableError(tt.err); got != tt.want {
			t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestNewExtractor(t *testing.T) {
	cfg := testAIConfig()
	cfg.APIKey = ""
	_, err := NewExtractor(cfg, testLogger)
	var appErr *atsErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, atsErrors.ErrCodeMissingAPIKey, appErr.Code)

	cfg = testAIConfig()
	cfg.Provider = "openai"
	_, err = NewExtractor(cfg, testLogger)
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, atsErrors.ErrCodeInvalidConfig, appErr.Code)
}
