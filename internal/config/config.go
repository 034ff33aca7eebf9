// Package config loads the nsedesk YAML configuration with environment
// variable overrides.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the nsedesk client.
type Config struct {
	API     API     `yaml:"api"`
	Auth    Auth    `yaml:"auth"`
	Storage Storage `yaml:"storage"`
	Logging Logging `yaml:"logging"`
	UI      UI      `yaml:"ui"`
	Fetch   Fetch   `yaml:"fetch"`
}

// API holds the backend endpoint configuration.
type API struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Auth holds credential persistence settings.
type Auth struct {
	TokenPath string `yaml:"token_path"`
}

// Storage holds paths for the local cache and exports.
type Storage struct {
	CachePath string `yaml:"cache_path"`
	DataDir   string `yaml:"data_dir"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// UI holds terminal dashboard preferences.
type UI struct {
	// PrioritySymbols is the preferred default-selection order for the F&O
	// view when no prior symbol selection is valid.
	PrioritySymbols []string `yaml:"priority_symbols"`
}

// Fetch holds parameters for the bulk fetch jobs.
type Fetch struct {
	RateLimitPerMin int `yaml:"rate_limit_per_min"`
	MaxAttempts     int `yaml:"max_attempts"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns a Config with working defaults for a local backend.
func Default() *Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".nsedesk")
	return &Config{
		API:     API{BaseURL: "http://localhost:8000/api", TimeoutSeconds: 30},
		Auth:    Auth{TokenPath: filepath.Join(base, "token")},
		Storage: Storage{CachePath: filepath.Join(base, "cache.db"), DataDir: filepath.Join(base, "data")},
		Logging: Logging{Level: "info", Format: "text"},
		UI:      UI{PrioritySymbols: []string{"NIFTY", "BANKNIFTY"}},
		Fetch:   Fetch{RateLimitPerMin: 30, MaxAttempts: 3},
	}
}

// Load reads the YAML configuration file at path into a Config on top of the
// defaults, then applies environment variable overrides. A missing file is
// not an error: defaults plus environment are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NSEDESK_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("NSEDESK_API_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.API.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("NSEDESK_TOKEN_PATH"); v != "" {
		cfg.Auth.TokenPath = v
	}
	if v := os.Getenv("NSEDESK_CACHE_PATH"); v != "" {
		cfg.Storage.CachePath = v
	}
	if v := os.Getenv("NSEDESK_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
