package cache

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"atscore/internal/config"
	"atscore/internal/scoring"
	"atscore/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]string
	ttls    map[string]time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memoryStore) Set(_ context.Context, key, value string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	m.ttls[key] = expiration
	return nil
}

func strPtr(s string) *string { return &s }

func TestReportCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	c := New(store, time.Hour)

	match := 50.0
	report := &types.Report{
		OverallScore:    77,
		Grade:           "B",
		KeywordAnalysis: types.KeywordAnalysis{JobMatchScore: &match},
		TopIssues:       []types.RankedFinding{{Section: types.SectionSkills, Severity: types.SeverityMajor, Message: "Only one skill listed"}},
		LexiconVersion:  "2025.1",
	}

	got, ok, err := c.Get(ctx, "report:abc")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "report:abc", report))
	assert.Equal(t, time.Hour, store.ttls["report:abc"])

	got, ok, err = c.Get(ctx, "report:abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, report, got)
}

func TestReportCacheCorruptEntry(t *testing.T) {
	store := newMemoryStore()
	store.entries["report:bad"] = "{not json"

	_, ok, err := New(store, time.Minute).Get(context.Background(), "report:bad")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestNilReportCacheAlwaysMisses(t *testing.T) {
	var c *ReportCache
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", &types.Report{}))
	got, ok, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestNewRedisDisabled(t *testing.T) {
	c, closeFn, err := NewRedis(context.Background(), config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.NoError(t, closeFn())
}

func TestKey(t *testing.T) {
	resume := &types.Resume{PersonalInfo: types.PersonalInfo{Name: "Jane"}}
	defaults := scoring.DefaultConfig()

	base, err := Key(resume, nil, "2025.1", defaults)
	require.NoError(t, err)
	assert.Regexp(t, `^report:[0-9a-f]{64}$`, base)

	again, err := Key(&types.Resume{PersonalInfo: types.PersonalInfo{Name: "Jane"}}, nil, "2025.1", scoring.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, base, again, "equal input must give equal keys")

	reweighted := scoring.DefaultConfig()
	reweighted.Weights.Format = 0.5
	regraded := scoring.DefaultConfig()
	regraded.Grades = []scoring.GradeBand{{Grade: "Pass", Min: 50}, {Grade: "Fail", Min: 0}}
	shortlist := scoring.DefaultConfig()
	shortlist.TopN = 1
	nextYear := scoring.DefaultConfig()
	nextYear.ReferenceYear = defaults.ReferenceYear + 1

	variants := map[string]struct {
		resume *types.Resume
		jd     *string
		lex    string
		cfg    scoring.Config
	}{
		"empty job description": {resume, strPtr(""), "2025.1", defaults},
		"job description":       {resume, strPtr("Go"), "2025.1", defaults},
		"lexicon version":       {resume, nil, "2025.2", defaults},
		"resume":                {&types.Resume{PersonalInfo: types.PersonalInfo{Name: "John"}}, nil, "2025.1", defaults},
		"weights":               {resume, nil, "2025.1", reweighted},
		"grades":                {resume, nil, "2025.1", regraded},
		"top n":                 {resume, nil, "2025.1", shortlist},
		"reference year":        {resume, nil, "2025.1", nextYear},
	}
	seen := map[string]string{base: "base"}
	for name, v := range variants {
		key, err := Key(v.resume, v.jd, v.lex, v.cfg)
		require.NoError(t, err)
		if prev, dup := seen[key]; dup {
			t.Errorf("%s collides with %s", name, prev)
		}
		seen[key] = name
	}
}

func TestCachedReportKeepsOmittedJobMatch(t *testing.T) {
	c := New(newMemoryStore(), time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", &types.Report{Grade: "F"}))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, got.KeywordAnalysis.JobMatchScore)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "jobMatchScore")
}
