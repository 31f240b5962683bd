package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisory/internal/advisory"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, advisory.DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, advisory.DefaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.AttemptTimeoutDuration())
	assert.Equal(t, 3*time.Second, cfg.RetryBackoffDuration())
	assert.Equal(t, "auto", cfg.Theme)
	assert.Equal(t, ":8790", cfg.Gateway.Addr)
	assert.Equal(t, 15*time.Minute, cfg.Gateway.UpstreamTimeoutDuration())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `endpoint: https://analysis.internal/hook
max_attempts: 5
attempt_timeout: 2m
retry_backoff: 500ms
theme: dark
gateway:
  addr: 127.0.0.1:9000
  upstream_timeout: 1m
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://analysis.internal/hook", cfg.Endpoint)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Minute, cfg.AttemptTimeoutDuration())
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBackoffDuration())
	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, "127.0.0.1:9000", cfg.Gateway.Addr)
	assert.Equal(t, time.Minute, cfg.Gateway.UpstreamTimeoutDuration())
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ADVISORY_ENDPOINT", "https://override.example/hook")
	t.Setenv("ADVISORY_THEME", "light")
	t.Setenv("ADVISORY_LOG_FILE", "/tmp/advisory.log")
	t.Setenv("ADVISORY_GATEWAY_ADDR", ":7000")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://override.example/hook", cfg.Endpoint)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, "/tmp/advisory.log", cfg.LogFile)
	assert.Equal(t, ":7000", cfg.Gateway.Addr)
}

func TestEnvOverridesBeatFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: dark\n"), 0644))
	t.Setenv("ADVISORY_THEME", "light")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.Theme)
}

func TestDurationFallbacks(t *testing.T) {
	cfg := &Config{AttemptTimeout: "garbage", RetryBackoff: "-3s"}
	assert.Equal(t, advisory.DefaultAttemptTimeout, cfg.AttemptTimeoutDuration())
	assert.Equal(t, advisory.DefaultRetryBackoff, cfg.RetryBackoffDuration())

	g := GatewayConfig{}
	assert.Equal(t, 15*time.Minute, g.UpstreamTimeoutDuration())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Theme = "dark"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dark", loaded.Theme)
	assert.Equal(t, cfg.Endpoint, loaded.Endpoint)
}

func TestDefaultPathHonorsEnv(t *testing.T) {
	t.Setenv("ADVISORY_CONFIG", "/etc/advisory.yaml")
	assert.Equal(t, "/etc/advisory.yaml", DefaultPath())
}
