package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"atscore/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  logLevel: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "json", cfg.App.DefaultFormat)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost:8080", cfg.Server.Address())
	assert.Equal(t, "disabled", cfg.Server.TLS.Mode)
	assert.Equal(t, "atscore:", cfg.Cache.Namespace)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 10, cfg.Scoring.TopN)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("ATSCORE_SERVER_PORT", "9999")
	t.Setenv("ATSCORE_SCORING_TOPN", "5")
	t.Setenv("ATSCORE_AI_APIKEY", "")
	t.Setenv("GEMINI_API_KEY", "gemini-from-env")

	cfg, err := Load(writeConfig(t, "server:\n  port: \"8081\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Scoring.TopN)
	assert.Equal(t, "gemini-from-env", cfg.AI.APIKey)
	assert.NoError(t, cfg.RequireAIKey())
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad default format", "app:\n  defaultFormat: pdf\n"},
		{"bad tls mode", "server:\n  tls:\n    mode: sometimes\n"},
		{"unknown section weight", "scoring:\n  sectionWeights:\n    hobbies: 0.5\n"},
		{"grades without floor", "scoring:\n  grades:\n    - {grade: P, min: 50}\n"},
		{"cache without address", "cache:\n  enabled: true\n  addr: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestToScoring(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
scoring:
  weights: {sections: 0.5, keywords: 0.3, format: 0.2}
  sectionWeights:
    experience: 0.5
    personal_info: 0.05
  grades:
    - {grade: Pass, min: 60}
    - {grade: Fail, min: 0}
  referenceYear: 2024
`))
	require.NoError(t, err)

	sc, err := cfg.ToScoring()
	require.NoError(t, err)

	assert.Equal(t, 0.3, sc.Weights.Keywords)
	assert.Equal(t, 0.5, sc.SectionWeights[types.SectionExperience])
	assert.Equal(t, 0.05, sc.SectionWeights[types.SectionPersonalInfo])
	assert.Equal(t, 0.15, sc.SectionWeights[types.SectionEducation], "unset sections keep defaults")
	assert.Equal(t, "Pass", sc.Grade(75))
	assert.Equal(t, "Fail", sc.Grade(59))
	assert.Equal(t, 2024, sc.ReferenceYear)
	assert.Equal(t, 40, sc.MaxJobKeywords)
}

func TestRequireAIKey(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireAIKey())
	cfg.AI.APIKey = "k"
	assert.NoError(t, cfg.RequireAIKey())
}

func TestServerAPIKeysFromCommaList(t *testing.T) {
	cfg := &Config{Server: ServerConfig{APIKeys: []string{" a, b ,,c "}}}
	cfg.applyServerAPIKeyFallbacks()
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Server.APIKeys)
}
