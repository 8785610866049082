// Package config loads client configuration from a JSONC file with
// environment overrides. Comments and trailing commas are permitted in the
// file; it is standardized to plain JSON before decoding.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tailscale/hujson"
)

// Config carries the knobs for one console session.
type Config struct {
	// APIBaseURL is the origin of the backend API. Required.
	APIBaseURL string `json:"api_base_url"`

	// AssetBaseURL prefixes relative image paths. Defaults to APIBaseURL.
	AssetBaseURL string `json:"asset_base_url,omitempty"`

	// SessionFile is where the auth token and user record persist between
	// runs. Empty disables persistence.
	SessionFile string `json:"session_file,omitempty"`

	// PrefetchDwellMS is the hover dwell before a speculative fetch fires.
	// 0 keeps the built-in 200ms.
	PrefetchDwellMS int `json:"prefetch_dwell_ms,omitempty"`

	// SearchDebounceMS is the quiet period before a search dispatches.
	// 0 keeps the built-in 300ms.
	SearchDebounceMS int `json:"search_debounce_ms,omitempty"`

	// RedisAddr, when set, backs the prefetch provider and revision store
	// with redis instead of in-process caches.
	RedisAddr string `json:"redis_addr,omitempty"`
}

// PrefetchDwell returns the configured dwell as a duration, zero when unset.
func (c Config) PrefetchDwell() time.Duration {
	return time.Duration(c.PrefetchDwellMS) * time.Millisecond
}

// SearchDebounce returns the configured debounce as a duration, zero when
// unset.
func (c Config) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMS) * time.Millisecond
}

// Environment variables consulted by Load, highest precedence.
const (
	EnvAPIBaseURL   = "OPTISYNC_API_URL"
	EnvAssetBaseURL = "OPTISYNC_ASSET_URL"
	EnvSessionFile  = "OPTISYNC_SESSION_FILE"
	EnvRedisAddr    = "OPTISYNC_REDIS_ADDR"
	EnvDwellMS      = "OPTISYNC_PREFETCH_DWELL_MS"
	EnvDebounceMS   = "OPTISYNC_SEARCH_DEBOUNCE_MS"
)

// Load reads path (JSONC), applies environment overrides and validates the
// result. An empty path skips the file and builds the config from the
// environment alone. A missing file at a non-empty path is an error.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		cfg, err = Parse(data)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	cfg = applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.AssetBaseURL == "" {
		cfg.AssetBaseURL = cfg.APIBaseURL
	}
	return cfg, nil
}

// Parse decodes a JSONC document into a Config without validating it.
func Parse(data []byte) (Config, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(std, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate reports the first structural problem with cfg.
func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("config: api_base_url is required")
	}
	if c.PrefetchDwellMS < 0 {
		return fmt.Errorf("config: prefetch_dwell_ms must be >= 0")
	}
	if c.SearchDebounceMS < 0 {
		return fmt.Errorf("config: search_debounce_ms must be >= 0")
	}
	return nil
}

func applyEnv(cfg Config) Config {
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv(EnvAssetBaseURL); v != "" {
		cfg.AssetBaseURL = v
	}
	if v := os.Getenv(EnvSessionFile); v != "" {
		cfg.SessionFile = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv(EnvDwellMS); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PrefetchDwellMS = n
		}
	}
	if v := os.Getenv(EnvDebounceMS); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SearchDebounceMS = n
		}
	}
	return cfg
}
