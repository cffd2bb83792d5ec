package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromConfig_ContextAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, closeLog := newFromConfig(Config{Level: "info", Format: "json"}, &buf, DefaultExtractors()...)
	t.Cleanup(func() { _ = closeLog() })

	ctx := WithRecipient(WithRunID(context.Background(), "run-1"), "a@x.com")
	log.InfoContext(ctx, "sent", slog.String("subject", "Hello"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "sent", line["msg"])
	assert.Equal(t, "run-1", line["run_id"])
	assert.Equal(t, "a@x.com", line["recipient"])
	assert.Equal(t, "Hello", line["subject"])
}

func TestNewFromConfig_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, closeLog := newFromConfig(Config{Level: "warn", Format: "text"}, &buf)
	t.Cleanup(func() { _ = closeLog() })

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestNewFromConfig_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var buf bytes.Buffer
	log, closeLog := newFromConfig(Config{Dir: dir, MaxSizeMB: 1, MaxBackups: 5}, &buf)

	log.Info("batch done", slog.Int("sent", 3))
	require.NoError(t, closeLog())

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "batch done")
	assert.Contains(t, string(data), "sent=3")
	assert.Contains(t, buf.String(), `"sent":3`)
}

func TestRunID(t *testing.T) {
	t.Parallel()

	assert.Empty(t, RunID(context.Background()))
	assert.Equal(t, "abc", RunID(WithRunID(context.Background(), "abc")))

	_, ok := RunIDExtractor()(context.Background())
	assert.False(t, ok)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("disk full")
}

func TestFanout_FailingSinkDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	good := slog.NewTextHandler(&buf, nil)
	bad := failingHandler{slog.NewTextHandler(io.Discard, nil)}

	h := withContext(fanout{bad, good}, RunIDExtractor())
	err := h.Handle(WithRunID(context.Background(), "run-7"), slog.NewRecord(time.Now(), slog.LevelInfo, "sent", 0))

	require.Error(t, err)
	assert.Contains(t, buf.String(), "msg=sent")
	assert.Contains(t, buf.String(), "run_id=run-7")
}

func TestWithContext_NoExtractors(t *testing.T) {
	t.Parallel()

	next := slog.NewTextHandler(io.Discard, nil)
	assert.Equal(t, slog.Handler(next), withContext(next, nil))
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := NewNope()
	log.Error("discarded")
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
