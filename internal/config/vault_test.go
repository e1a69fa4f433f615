package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atscore/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVault serves sys/health and KVv2 reads from an in-memory map keyed by
// the logical path, e.g. "secret/data/atscore/gemini".
func fakeVault(t *testing.T, secrets map[string]map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Vault-Token") != "test-token" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		path := strings.TrimPrefix(r.URL.Path, "/v1/")
		if path == "sys/health" {
			_ = json.NewEncoder(w).Encode(map[string]any{"initialized": true, "sealed": false, "version": "1.15.0"})
			return
		}
		data, ok := secrets[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"data":     data,
				"metadata": map[string]any{"version": 3},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestApplyVaultSecrets(t *testing.T) {
	srv := fakeVault(t, map[string]map[string]any{
		"secret/data/atscore/api":   {"keys": "alpha, beta"},
		"secret/data/atscore/ai":    {"api_key": "gemini-secret-value"},
		"secret/data/atscore/tls":   {"cert": "CERT PEM", "key": "KEY PEM"},
		"secret/data/atscore/redis": {"password": "hunter2"},
	})

	cfg := &Config{
		Server: ServerConfig{TLS: TLSConfig{Mode: "server", CertFile: "/etc/ssl/cert.pem"}},
		Vault: VaultConfig{
			Enabled: true,
			Address: srv.URL,
			Token:   "test-token",
			Secrets: VaultSecrets{
				APIKeys:       "secret/data/atscore/api",
				GeminiKey:     "secret/data/atscore/ai",
				TLSCerts:      "secret/data/atscore/tls",
				CachePassword: "secret/data/atscore/redis",
			},
		},
	}

	logger, err := errors.New("error")
	require.NoError(t, err)
	require.NoError(t, ApplyVaultSecrets(cfg, logger))

	assert.Equal(t, []string{"alpha", "beta"}, cfg.Server.APIKeys)
	assert.Equal(t, "gemini-secret-value", cfg.AI.APIKey)
	assert.Equal(t, "CERT PEM", cfg.Server.TLS.CertContent)
	assert.Empty(t, cfg.Server.TLS.CertFile, "vault content replaces the file")
	assert.Equal(t, "KEY PEM", cfg.Server.TLS.KeyContent)
	assert.Equal(t, "hunter2", cfg.Cache.Password)
}

func TestApplyVaultSecretsMissingPath(t *testing.T) {
	srv := fakeVault(t, map[string]map[string]any{})
	cfg := &Config{Vault: VaultConfig{
		Enabled: true,
		Address: srv.URL,
		Token:   "test-token",
		Secrets: VaultSecrets{GeminiKey: "secret/data/nope"},
	}}

	err := ApplyVaultSecrets(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Gemini API key")
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	cfg := &Config{AI: AIConfig{APIKey: "kept"}}
	require.NoError(t, ApplyVaultSecrets(cfg, nil))
	assert.Equal(t, "kept", cfg.AI.APIKey)
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "float64 value", input: float64(42.0), expected: 42},
		{name: "string value", input: "42", expected: 42},
		{name: "json number", input: json.Number("7"), expected: 7},
		{name: "invalid string value", input: "not-a-number", expectError: true},
		{name: "missing", input: nil, expectError: true},
		{name: "unsupported type", input: []string{"42"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "test/path")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestResolveVaultToken(t *testing.T) {
	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"})
		assert.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "vault-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token  \n"), 0o600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile})
		assert.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token/file"})
		assert.ErrorContains(t, err, "failed to read vault token file")
	})

	t.Run("no token provided", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{})
		assert.ErrorContains(t, err, "vault token is required")
	})
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "abcd****wxyz", maskSecret("abcdefghuvwxyz"))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "", maskSecret(""))
}
