package logger

import (
	"log/slog"
	"strings"
)

// Config controls where log lines go.
type Config struct {
	Level  string `env:"LOG_LEVEL" yaml:"level"`   // debug, info, warn, error
	Format string `env:"LOG_FORMAT" yaml:"format"` // json or text

	// Dir holds the rotating mailer.log file. Empty disables file output.
	Dir        string `env:"LOG_DIR" yaml:"dir"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" yaml:"max_size_mb"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" yaml:"max_backups"`

	Sentry SentryConfig `yaml:"sentry"`
}

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN" yaml:"dsn"`
	Environment string `env:"SENTRY_ENVIRONMENT" yaml:"environment"`
	// MinLevel determines which log levels are stored in Sentry (slog.LevelWarn or slog.LevelError).
	MinLevel slog.Level `yaml:"-"`
}

// DefaultConfig mirrors the rotation used by the mail tool: 1MB files, 5 backups.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "json",
		Dir:        "logs",
		MaxSizeMB:  1,
		MaxBackups: 5,
		Sentry: SentryConfig{
			Environment: "production",
			MinLevel:    slog.LevelWarn,
		},
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
