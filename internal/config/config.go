// Package config loads the server configuration from a YAML file with
// environment-variable overrides for deployment platforms that only speak
// env vars.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the server binary needs to start.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":3000".
	Addr string `yaml:"addr"`

	// DatabasePath is the SQLite database file path.
	DatabasePath string `yaml:"database_path"`

	// JWTSecret signs user session tokens.
	JWTSecret string `yaml:"jwt_secret"`

	// CredentialKey encrypts stored platform account passwords.
	CredentialKey string `yaml:"credential_key"`

	// RecognizerURL is the captcha recognition service endpoint. A raw
	// challenge image POSTed there returns {"code": "..."}.
	RecognizerURL string `yaml:"recognizer_url"`

	// CollectPause is the pause inserted between accounts in a batch
	// collection run, to stay inside partner rate limits.
	CollectPause time.Duration `yaml:"collect_pause"`

	// SessionTTL is the lifetime of issued user session tokens.
	SessionTTL time.Duration `yaml:"session_ttl"`

	Verbose bool `yaml:"verbose"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Addr:         ":3000",
		DatabasePath: "afflux.db",
		CollectPause: time.Second,
		SessionTTL:   24 * time.Hour,
	}
}

// Load reads the config from path. A missing file yields the defaults;
// environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: jwt_secret is required (set AFFLUX_JWT_SECRET)")
	}
	if cfg.CredentialKey == "" {
		return nil, fmt.Errorf("config: credential_key is required (set AFFLUX_CREDENTIAL_KEY)")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("AFFLUX_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	if v := os.Getenv("AFFLUX_DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("AFFLUX_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("AFFLUX_CREDENTIAL_KEY"); v != "" {
		cfg.CredentialKey = v
	}
	if v := os.Getenv("AFFLUX_RECOGNIZER_URL"); v != "" {
		cfg.RecognizerURL = v
	}
	if v := os.Getenv("AFFLUX_COLLECT_PAUSE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CollectPause = d
		}
	}
}
