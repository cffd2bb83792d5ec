package logger

import (
	"context"
	"log/slog"
)

type (
	runIDKey     struct{}
	recipientKey struct{}
)

// WithRunID tags ctx with a batch identifier.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunID returns the batch identifier stored in ctx.
func RunID(ctx context.Context) string {
	v, _ := ctx.Value(runIDKey{}).(string)
	return v
}

// WithRecipient tags ctx with the address currently being processed.
func WithRecipient(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, recipientKey{}, email)
}

// RunIDExtractor adds run_id to every line logged with a tagged context.
func RunIDExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := RunID(ctx); id != "" {
			return slog.String("run_id", id), true
		}
		return slog.Attr{}, false
	}
}

// RecipientExtractor adds recipient to every line logged with a tagged context.
func RecipientExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if email, ok := ctx.Value(recipientKey{}).(string); ok && email != "" {
			return slog.String("recipient", email), true
		}
		return slog.Attr{}, false
	}
}
