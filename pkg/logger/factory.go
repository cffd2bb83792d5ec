package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the log file written inside Config.Dir.
const FileName = "mailer.log"

// NewFromConfig builds a logger writing to stdout, the rotating log file and
// Sentry, depending on cfg. The returned close function flushes Sentry and
// closes the log file.
func NewFromConfig(cfg Config, extractors ...ContextExtractor) (*slog.Logger, func() error) {
	return newFromConfig(cfg, os.Stdout, extractors...)
}

func newFromConfig(cfg Config, stdout io.Writer, extractors ...ContextExtractor) (*slog.Logger, func() error) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	handlers := []slog.Handler{newHandler(cfg.Format, stdout, opts)}
	closers := make([]func() error, 0, 2)

	if cfg.Dir != "" {
		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, FileName),
			MaxSize:    max(cfg.MaxSizeMB, 1),
			MaxBackups: cfg.MaxBackups,
		}
		// The file keeps plain text lines like the console output of the mail tool.
		handlers = append(handlers, slog.NewTextHandler(rotator, opts))
		closers = append(closers, rotator.Close)
	}

	if h, ok := newSentryHandler(cfg.Sentry, handlers[0]); ok {
		handlers = append(handlers, h)
		closers = append(closers, func() error {
			sentry.Flush(2 * time.Second)
			return nil
		})
	}

	var handler slog.Handler = handlers[0]
	if len(handlers) > 1 {
		handler = fanout(handlers)
	}

	closeFn := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}

	return slog.New(withContext(handler, extractors...)), closeFn
}

func newHandler(format string, w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	if strings.EqualFold(strings.TrimSpace(format), "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func newSentryHandler(cfg SentryConfig, fallback slog.Handler) (slog.Handler, bool) {
	if cfg.DSN == "" {
		return nil, false
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		// Keep logging locally when Sentry cannot start.
		slog.New(fallback).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return nil, false
	}

	eventLevel := []slog.Level{slog.LevelError}
	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel == slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	return sentryslog.Option{
		EventLevel: eventLevel,
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background()), true
}
