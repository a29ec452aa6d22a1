package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Data      DataConfig
	Sandbox   SandboxConfig
	Session   SessionConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string   `envconfig:"PORT" default:"8000"`
	Host        string   `envconfig:"HOST" default:"0.0.0.0"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// DataConfig points at an on-disk dataset. An empty Dir uses the embedded one.
type DataConfig struct {
	Dir   string `envconfig:"DATA_DIR" default:""`
	Watch bool   `envconfig:"DATA_WATCH" default:"false"`
}

// SandboxConfig holds script window configuration.
type SandboxConfig struct {
	FPS            int           `envconfig:"SANDBOX_FPS" default:"30"`
	TickTimeout    time.Duration `envconfig:"SANDBOX_TICK_TIMEOUT" default:"250ms"`
	CompileTimeout time.Duration `envconfig:"SANDBOX_COMPILE_TIMEOUT" default:"1s"`
	PoolSize       int           `envconfig:"SANDBOX_POOL_SIZE" default:"4"`
}

// SessionConfig holds session limits. Sessions untouched for IdleTTL are
// closed; zero keeps them until deleted.
type SessionConfig struct {
	Max     int           `envconfig:"SESSION_MAX" default:"1000"`
	IdleTTL time.Duration `envconfig:"SESSION_IDLE_TTL" default:"30m"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			CORSOrigins: []string{"*"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Sandbox: SandboxConfig{
			FPS:            30,
			TickTimeout:    250 * time.Millisecond,
			CompileTimeout: time.Second,
			PoolSize:       4,
		},
		Session: SessionConfig{
			Max:     1000,
			IdleTTL: 30 * time.Minute,
		},
	}
}
