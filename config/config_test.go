package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "optisync.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadJSONCWithComments(t *testing.T) {
	path := writeConfig(t, `{
		// staging backend
		"api_base_url": "https://api.staging.example.com",
		"prefetch_dwell_ms": 150,
		"search_debounce_ms": 250, // trailing comma below is fine too
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.staging.example.com", cfg.APIBaseURL)
	assert.Equal(t, 150*time.Millisecond, cfg.PrefetchDwell())
	assert.Equal(t, 250*time.Millisecond, cfg.SearchDebounce())
}

func TestLoadAssetURLDefaultsToAPI(t *testing.T) {
	path := writeConfig(t, `{"api_base_url": "http://localhost:8000"}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.AssetBaseURL)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"api_base_url": "http://localhost:8000"}`)
	t.Setenv(EnvAPIBaseURL, "https://api.example.com")
	t.Setenv(EnvDwellMS, "75")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, 75, cfg.PrefetchDwellMS)
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "https://api.example.com")
	t.Setenv(EnvRedisAddr, "localhost:6379")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.jsonc"))
	assert.Error(t, err)
}

func TestLoadRejectsMissingBaseURL(t *testing.T) {
	path := writeConfig(t, `{"asset_base_url": "http://cdn.example.com"}`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "api_base_url")
}

func TestParseRejectsMalformed(t *testing.T) {
	_, err := Parse([]byte(`{"api_base_url": `))
	assert.Error(t, err)
}

func TestValidateNegativeDurations(t *testing.T) {
	err := Config{APIBaseURL: "x", PrefetchDwellMS: -1}.Validate()
	assert.Error(t, err)
}
