// Package logger builds the structured loggers used across mailmerge.
//
// It extends log/slog with context extractors, a rotating log file and
// optional Sentry reporting:
//
//   - stdout in JSON or text format
//   - <LOG_DIR>/mailer.log rotated by size (1MB, 5 backups by default) through lumberjack
//   - Sentry when SENTRY_DSN is set; errors become issues, warnings are kept as logs
//
// # Usage
//
//	log, closeLog := logger.NewFromConfig(cfg.Log, logger.DefaultExtractors()...)
//	defer closeLog()
//
//	ctx = logger.WithRunID(ctx, runID)
//	ctx = logger.WithRecipient(ctx, "a@example.com")
//	log.InfoContext(ctx, "sent")
//	// {"level":"INFO","msg":"sent","run_id":"...","recipient":"a@example.com"}
//
// # Context Extractors
//
// A ContextExtractor returns one attribute derived from a context:
//
//	type ContextExtractor func(ctx context.Context) (slog.Attr, bool)
//
// Extractors run on every log call, before the record is fanned out, so
// stdout, the log file and Sentry all see the same attributes. A sink that
// fails to write does not stop the others.
//
// If Sentry fails to initialize the logger keeps writing locally.
// [NewNope] returns a logger that discards everything, used as the default
// by packages that accept an optional logger.
package logger
