// Package config loads advisory client and gateway settings from a YAML
// file with environment overrides. Durations are YAML strings in
// time.ParseDuration syntax.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"advisory/internal/advisory"
)

// Config holds all advisory configuration.
type Config struct {
	// Analysis backend
	Endpoint       string `yaml:"endpoint"`
	MaxAttempts    int    `yaml:"max_attempts"`
	AttemptTimeout string `yaml:"attempt_timeout"`
	RetryBackoff   string `yaml:"retry_backoff"`

	// UI
	Theme   string `yaml:"theme"` // auto, light, dark
	LogFile string `yaml:"log_file"`

	// Gateway
	Gateway GatewayConfig `yaml:"gateway"`
}

// GatewayConfig configures the CORS forwarding relay.
type GatewayConfig struct {
	Addr            string `yaml:"addr"`
	UpstreamTimeout string `yaml:"upstream_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:       advisory.DefaultEndpoint,
		MaxAttempts:    advisory.DefaultMaxAttempts,
		AttemptTimeout: "10m",
		RetryBackoff:   "3s",
		Theme:          "auto",
		Gateway: GatewayConfig{
			Addr:            ":8790",
			UpstreamTimeout: "15m",
		},
	}
}

// DefaultPath returns the config file location, honoring ADVISORY_CONFIG.
func DefaultPath() string {
	if p := os.Getenv("ADVISORY_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".advisory", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ADVISORY_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("ADVISORY_THEME"); v != "" {
		c.Theme = v
	}
	if v := os.Getenv("ADVISORY_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("ADVISORY_GATEWAY_ADDR"); v != "" {
		c.Gateway.Addr = v
	}
}

// AttemptTimeoutDuration parses the attempt timeout, falling back to the
// client default on a bad value.
func (c *Config) AttemptTimeoutDuration() time.Duration {
	return parseDuration(c.AttemptTimeout, advisory.DefaultAttemptTimeout)
}

// RetryBackoffDuration parses the retry backoff, falling back to the
// client default on a bad value.
func (c *Config) RetryBackoffDuration() time.Duration {
	return parseDuration(c.RetryBackoff, advisory.DefaultRetryBackoff)
}

// UpstreamTimeoutDuration parses the gateway upstream timeout.
func (g GatewayConfig) UpstreamTimeoutDuration() time.Duration {
	return parseDuration(g.UpstreamTimeout, 15*time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
