package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"atscore/internal/ai"
	"atscore/internal/cache"
	"atscore/internal/config"
	atsErrors "atscore/internal/errors"
	"atscore/internal/jobfetch"
	"atscore/internal/lexicon"
	"atscore/internal/scoring"
	"atscore/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = atsErrors.NewLoggerWithWriter(io.Discard, 0)

const resumeJSON = `{
  "personalInfo": {"name": "Jane Doe", "email": "jane@example.com", "phone": "+1 555 010 2030", "location": "Austin, TX"},
  "summary": "Backend engineer with 8 years of experience building Python and Go services on AWS.",
  "experience": [{
    "company": "Acme", "position": "Senior Engineer", "startDate": "2020-01", "endDate": "present", "current": true,
    "description": ["Led migration of 12 services to Kubernetes, cutting costs by 30%", "Built billing APIs in Python"]
  }],
  "education": [{"institution": "State University", "degree": "BS", "field": "Computer Science", "endDate": "2015"}],
  "skills": [{"category": "Languages", "items": ["Python", "Go", "SQL", "Docker", "Kubernetes"]}]
}`

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func (m *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memoryStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

type fakeExtractor struct {
	resume *types.Resume
	err    error
	info   *ai.ModelInfo
	closed bool
}

func (f *fakeExtractor) ExtractResume(context.Context, string) (*types.Resume, *ai.TokenUsage, error) {
	return f.resume, &ai.TokenUsage{TotalTokens: 10}, f.err
}

func (f *fakeExtractor) GetModelInfo(context.Context) *ai.ModelInfo { return f.info }

func (f *fakeExtractor) Close() error {
	f.closed = true
	return nil
}

func testEngine(t *testing.T) *scoring.Engine {
	t.Helper()
	store, err := lexicon.Default()
	require.NoError(t, err)
	cfg := scoring.DefaultConfig()
	cfg.ReferenceYear = 2025
	engine, err := scoring.New(store, cfg)
	require.NoError(t, err)
	return engine
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           "0",
			MaxRequestSize: 1 << 20,
		},
		AI: config.AIConfig{Provider: "gemini"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, deps Dependencies) *Server {
	t.Helper()
	if deps.Engine == nil {
		deps.Engine = testEngine(t)
	}
	s := NewServer(cfg, deps, "test", testLogger)
	t.Cleanup(s.Close)
	return s
}

func post(t *testing.T, h http.Handler, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAnalyze(t *testing.T) {
	h := newTestServer(t, testConfig(), Dependencies{}).Handler()

	rec := post(t, h, "/ats/analyze", `{"resumeData": `+resumeJSON+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[types.AnalyzeResponse](t, rec)
	assert.True(t, resp.Success)
	assert.False(t, resp.Cached)
	require.NotNil(t, resp.Report)
	assert.GreaterOrEqual(t, resp.Report.OverallScore, 0)
	assert.LessOrEqual(t, resp.Report.OverallScore, 100)
	assert.Nil(t, resp.Report.KeywordAnalysis.JobMatchScore, "no job description, no job match")
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, resp.RequestID, rec.Header().Get(RequestIDHeader))
}

func TestAnalyzeWithJobDescription(t *testing.T) {
	h := newTestServer(t, testConfig(), Dependencies{}).Handler()

	rec := post(t, h, "/ats/analyze", `{"resumeData": `+resumeJSON+`, "jobDescription": "Python and Kubernetes required. Terraform preferred."}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[types.AnalyzeResponse](t, rec)
	require.NotNil(t, resp.Report.KeywordAnalysis.JobMatchScore)
}

func TestAnalyzeRejectsInvalidInput(t *testing.T) {
	h := newTestServer(t, testConfig(), Dependencies{}).Handler()

	tests := []struct {
		name string
		body string
	}{
		{"missing resume", `{}`},
		{"resume is an array", `{"resumeData": [1, 2]}`},
		{"wrong field type", `{"resumeData": {"experience": "ten years"}}`},
		{"not json", `resume please`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, "/ats/analyze", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			resp := decode[ErrorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
		})
	}

	rec := post(t, h, "/ats/analyze", `{"resumeData": {"experience": "ten years"}}`)
	resp := decode[ErrorResponse](t, rec)
	require.NotEmpty(t, resp.Fields)
	assert.Contains(t, resp.Fields[0].Field, "experience")
}

func TestAnalyzeRequiresJSONContentType(t *testing.T) {
	h := newTestServer(t, testConfig(), Dependencies{}).Handler()
	req := httptest.NewRequest(http.MethodPost, "/ats/analyze", strings.NewReader(`{"resumeData": {}}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeUsesCache(t *testing.T) {
	store := &memoryStore{entries: map[string]string{}}
	h := newTestServer(t, testConfig(), Dependencies{Cache: cache.New(store, time.Hour)}).Handler()

	body := `{"resumeData": ` + resumeJSON + `}`
	first := decode[types.AnalyzeResponse](t, post(t, h, "/ats/analyze", body))
	second := decode[types.AnalyzeResponse](t, post(t, h, "/ats/analyze", body))

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Report, second.Report)
	assert.Len(t, store.entries, 1)
}

func TestAnalyzeFetchesJobURL(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/job" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "Python and Kubernetes required.")
	}))
	defer site.Close()

	h := newTestServer(t, testConfig(), Dependencies{Fetcher: jobfetch.New(jobfetch.Options{})}).Handler()

	rec := post(t, h, "/ats/analyze", `{"resumeData": `+resumeJSON+`, "jobUrl": "`+site.URL+`/job"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[types.AnalyzeResponse](t, rec)
	assert.NotNil(t, resp.Report.KeywordAnalysis.JobMatchScore)

	tests := []struct {
		name   string
		url    string
		status int
	}{
		{"upstream 404", site.URL + "/missing", http.StatusBadGateway},
		{"invalid url", "ftp://example.com/job", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, "/ats/analyze", `{"resumeData": `+resumeJSON+`, "jobUrl": "`+tt.url+`"}`)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestValidate(t *testing.T) {
	h := newTestServer(t, testConfig(), Dependencies{}).Handler()

	tests := []struct {
		name      string
		body      string
		wantValid bool
	}{
		{"complete resume", resumeJSON, true},
		{"missing name", `{"personalInfo": {"email": "a@b.co"}}`, false},
		{"wrong shape", `{"skills": "Go"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, "/validate", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			result := decode[types.ValidationResult](t, rec)
			assert.Equal(t, tt.wantValid, result.Valid)
			if !tt.wantValid {
				assert.NotEmpty(t, result.Errors)
			}
		})
	}

	assert.Equal(t, http.StatusBadRequest, post(t, h, "/validate", `{`).Code)
}

func TestExtract(t *testing.T) {
	t.Run("unavailable without a model", func(t *testing.T) {
		h := newTestServer(t, testConfig(), Dependencies{}).Handler()
		rec := post(t, h, "/extract", `{"text": "Jane Doe"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("extracts and scores", func(t *testing.T) {
		var resume types.Resume
		require.NoError(t, json.Unmarshal([]byte(resumeJSON), &resume))
		h := newTestServer(t, testConfig(), Dependencies{Extractor: &fakeExtractor{resume: &resume}}).Handler()

		rec := post(t, h, "/extract", `{"text": "Jane Doe, Senior Engineer at Acme"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[types.ExtractResponse](t, rec)
		assert.Equal(t, "Jane Doe", resp.Resume.PersonalInfo.Name)
		require.NotNil(t, resp.Report)
	})

	t.Run("empty text", func(t *testing.T) {
		h := newTestServer(t, testConfig(), Dependencies{Extractor: &fakeExtractor{}}).Handler()
		assert.Equal(t, http.StatusBadRequest, post(t, h, "/extract", `{"text": "  "}`).Code)
	})

	t.Run("model failure", func(t *testing.T) {
		failing := &fakeExtractor{err: atsErrors.NewAIError(atsErrors.ErrCodeAIServiceFailed, "model down", errors.New("503"))}
		h := newTestServer(t, testConfig(), Dependencies{Extractor: failing}).Handler()
		assert.Equal(t, http.StatusBadGateway, post(t, h, "/extract", `{"text": "Jane"}`).Code)
	})
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.Server.APIKeys = []string{"secret-key-123"}
	h := newTestServer(t, cfg, Dependencies{}).Handler()
	body := `{"resumeData": ` + resumeJSON + `}`

	tests := []struct {
		name    string
		headers []string
		status  int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", []string{"X-API-Key", "nope"}, http.StatusUnauthorized},
		{"header key", []string{"X-API-Key", "secret-key-123"}, http.StatusOK},
		{"bearer token", []string{"Authorization", "Bearer secret-key-123"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, post(t, h, "/ats/analyze", body, tt.headers...).Code)
		})
	}

	// Health stays open
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMin: 1, BurstCapacity: 2, ByIP: true}
	h := newTestServer(t, cfg, Dependencies{}).Handler()

	codes := make([]int, 0, 3)
	for range 3 {
		codes = append(codes, post(t, h, "/validate", resumeJSON, "X-Forwarded-For", "203.0.113.7").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	assert.Equal(t, http.StatusOK, post(t, h, "/validate", resumeJSON, "X-Forwarded-For", "203.0.113.8").Code,
		"other clients have their own budget")
}

func TestRequestSizeLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxRequestSize = 64
	h := newTestServer(t, cfg, Dependencies{}).Handler()

	rec := post(t, h, "/ats/analyze", `{"resumeData": `+resumeJSON+`}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Message, "too large")
}

func TestRequestIDIsPropagated(t *testing.T) {
	h := newTestServer(t, testConfig(), Dependencies{}).Handler()
	rec := post(t, h, "/validate", resumeJSON, RequestIDHeader, "client-id-1")
	assert.Equal(t, "client-id-1", rec.Header().Get(RequestIDHeader))
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name      string
		extractor ai.Extractor
		status    string
	}{
		{"no model", nil, "healthy"},
		{"model available", &fakeExtractor{info: &ai.ModelInfo{Name: "gemini-test", Available: true}}, "healthy"},
		{"model unavailable", &fakeExtractor{info: &ai.ModelInfo{Name: "gemini-test", Error: "denied"}}, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, testConfig(), Dependencies{Extractor: tt.extractor}).Handler()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, http.StatusOK, rec.Code)

			body := decode[map[string]any](t, rec)
			assert.Equal(t, tt.status, body["status"])
			assert.NotEmpty(t, body["lexicon_version"])
		})
	}
}

func TestStats(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMin: 60, BurstCapacity: 5, ByIP: true}
	h := newTestServer(t, cfg, Dependencies{}).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	limits, ok := body["rate_limiting"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(5), limits["burst_capacity"])
	assert.Equal(t, float64(60), limits["rate_per_minute"])
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, testConfig(), Dependencies{}).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ats/analyze", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSetEngineSwapsLexicon(t *testing.T) {
	s := newTestServer(t, testConfig(), Dependencies{})
	before := s.Engine()

	store, err := lexicon.Default()
	require.NoError(t, err)
	s.reloadLexicon(store)

	assert.NotSame(t, before, s.Engine())
	assert.Equal(t, before.Config().ReferenceYear, s.Engine().Config().ReferenceYear)

	s.SetEngine(nil)
	assert.NotNil(t, s.Engine(), "a nil engine is ignored")
}

func TestCloseClosesExtractor(t *testing.T) {
	extractor := &fakeExtractor{}
	s := NewServer(testConfig(), Dependencies{Engine: testEngine(t), Extractor: extractor}, "test", testLogger)
	s.Close()
	assert.True(t, extractor.closed)
}

func TestBuildTLSConfigRequiresCertificates(t *testing.T) {
	_, err := buildTLSConfig(config.TLSConfig{Mode: "server"})
	assert.Error(t, err)

	cfg := testConfig()
	cfg.Server.TLS.Mode = "bogus"
	s := newTestServer(t, cfg, Dependencies{})
	assert.Error(t, s.configureTLS(&http.Server{Addr: "127.0.0.1:0"}))
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	rl := NewRateLimiter(60, 1, nil)
	defer rl.Close()

	assert.True(t, rl.Allow("ip:10.0.0.1"))
	assert.False(t, rl.Allow("ip:10.0.0.1"))
	assert.True(t, rl.Allow("ip:10.0.0.2"))
	assert.Equal(t, 2, rl.GetStats()["active_limiters"])

	rl.sweep(time.Now().Add(time.Minute))
	assert.Equal(t, 0, rl.GetStats()["active_limiters"])
	assert.True(t, rl.Allow("ip:10.0.0.1"), "a swept client starts with a fresh bucket")

	rl.Close()
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"peer address", nil, "192.0.2.1:5555", "192.0.2.1"},
		{"forwarded for", map[string]string{"X-Forwarded-For": "garbage, 198.51.100.7, 10.0.0.1"}, "192.0.2.1:5555", "198.51.100.7"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.9"}, "192.0.2.1:5555", "203.0.113.9"},
		{"invalid headers", map[string]string{"X-Forwarded-For": "nope", "X-Real-IP": "nope"}, "192.0.2.1:5555", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/health", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}

func TestWriteServerInfo(t *testing.T) {
	cfg := testConfig()
	cfg.Server.APIKeys = []string{"k1", "k2"}
	s := newTestServer(t, cfg, Dependencies{})

	var out strings.Builder
	s.writeServerInfo(&out)

	assert.Contains(t, out.String(), "POST /ats/analyze")
	assert.Contains(t, out.String(), "DISABLED (no AI API key configured)")
	assert.Contains(t, out.String(), "API authentication: ENABLED (2 keys configured)")
}
