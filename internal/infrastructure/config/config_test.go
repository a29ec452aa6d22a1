package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.Empty(t, cfg.Data.Dir)
	assert.False(t, cfg.Data.Watch)

	assert.Equal(t, 30, cfg.Sandbox.FPS)
	assert.Equal(t, 250*time.Millisecond, cfg.Sandbox.TickTimeout)
	assert.Equal(t, time.Second, cfg.Sandbox.CompileTimeout)
	assert.Equal(t, 4, cfg.Sandbox.PoolSize)
	assert.Equal(t, 1000, cfg.Session.Max)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
}

func TestLoadMatchesDefault(t *testing.T) {
	t.Setenv("PORT", "8000")
	t.Setenv("HOST", "0.0.0.0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                    "9000",
		"HOST":                    "127.0.0.1",
		"CORS_ORIGINS":            "https://a.example,https://b.example",
		"LOG_LEVEL":               "debug",
		"LOG_DEV":                 "true",
		"RATE_LIMIT_RPS":          "500",
		"RATE_LIMIT_BURST":        "1000",
		"RATE_LIMIT_ENABLED":      "false",
		"DATA_DIR":                "/srv/portfolio",
		"DATA_WATCH":              "true",
		"SANDBOX_FPS":             "60",
		"SANDBOX_TICK_TIMEOUT":    "1s",
		"SANDBOX_COMPILE_TIMEOUT": "2s",
		"SANDBOX_POOL_SIZE":       "8",
		"SESSION_MAX":             "10",
		"SESSION_IDLE_TTL":        "5m",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "/srv/portfolio", cfg.Data.Dir)
	assert.True(t, cfg.Data.Watch)
	assert.Equal(t, 60, cfg.Sandbox.FPS)
	assert.Equal(t, time.Second, cfg.Sandbox.TickTimeout)
	assert.Equal(t, 2*time.Second, cfg.Sandbox.CompileTimeout)
	assert.Equal(t, 8, cfg.Sandbox.PoolSize)
	assert.Equal(t, 10, cfg.Session.Max)
	assert.Equal(t, 5*time.Minute, cfg.Session.IdleTTL)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 30, cfg.Sandbox.FPS)
}

func TestLoadOrDefaultOnInvalidValue(t *testing.T) {
	t.Setenv("SANDBOX_FPS", "fast")

	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, 30, cfg.Sandbox.FPS)
}
