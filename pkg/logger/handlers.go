package logger

import (
	"context"
	"errors"
	"log/slog"
)

// ContextExtractor derives one attribute from a context, reporting false when absent.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// NewNope returns a logger that discards everything. Packages use it until
// a real logger is injected.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// contextHandler appends the attributes found by its extractors to every
// record before passing it on.
type contextHandler struct {
	slog.Handler
	extractors []ContextExtractor
}

func withContext(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	var clean []ContextExtractor
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	if len(clean) == 0 {
		return next
	}
	return &contextHandler{Handler: next, extractors: clean}
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.Handler.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), extractors: h.extractors}
}

// fanout writes every record to all sinks that accept its level. A failing
// sink (a full disk, an unreachable Sentry) does not keep the record from
// the others.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, rec slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, rec.Level) {
			continue
		}
		if err := h.Handle(ctx, rec.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
