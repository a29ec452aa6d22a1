package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Service is attached to every log line
const Service = "portfolio"

// Logger wraps zap.Logger with convenience methods.
type Logger struct {
	*zap.Logger
}

// Config mirrors the LOG_LEVEL and LOG_DEV settings.
type Config struct {
	Level       string // "debug", "info", "warn", "error"; empty picks by mode
	Development bool   // colored console output instead of JSON
	OutputPaths []string
}

// New builds a logger from cfg. An empty level means debug in development
// and info otherwise.
func New(cfg Config) (*Logger, error) {
	if cfg.Level == "" {
		cfg.Level = "info"
		if cfg.Development {
			cfg.Level = "debug"
		}
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		// Sampled JSON, no stack traces.
		zapCfg.DisableStacktrace = true
		zapCfg.EncoderConfig.TimeKey = "timestamp"
		zapCfg.EncoderConfig.MessageKey = "message"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zapCfg.Level = level
	if len(cfg.OutputPaths) > 0 {
		zapCfg.OutputPaths = cfg.OutputPaths
	}

	logger, err := zapCfg.Build(zap.Fields(zap.String("service", Service)))
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: logger}, nil
}

// FromSettings builds the server logger. An unknown level falls back to the
// mode's default and is reported once at warn.
func FromSettings(level string, development bool) *Logger {
	logger, err := New(Config{Level: level, Development: development})
	if err == nil {
		return logger
	}

	logger, ferr := New(Config{Development: development})
	if ferr != nil {
		return &Logger{Logger: zap.NewNop()}
	}
	logger.Warn("invalid log level, using default", zap.String("level", level), zap.Error(err))
	return logger
}
