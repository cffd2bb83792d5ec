package dispatch_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emersion/go-mbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailmerge/pkg/dispatch"
	"github.com/dmitrymomot/mailmerge/pkg/ledger"
	"github.com/dmitrymomot/mailmerge/pkg/mailer"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestPreviewer_Send(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := dispatch.NewPreviewer(dir)
	ctx := context.Background()

	require.NoError(t, p.Send(ctx, &mailer.Email{
		From:    "Team <team@x.com>",
		To:      []string{"ana.maria+news@x.com"},
		BCC:     []string{"audit@x.com"},
		Subject: "Hello Ana",
		Text:    "Hi Ana, welcome.",
	}))
	require.NoError(t, p.Send(ctx, &mailer.Email{
		To:      []string{"bo@x.com"},
		Subject: "Hello Bo",
		Text:    "Hi Bo",
		HTML:    "<p>Hi Bo</p>",
	}))

	anaDir := filepath.Join(dir, "ana.maria_news")
	assert.Equal(t, "Hello Ana\n", readFile(t, filepath.Join(anaDir, "001.subject.txt")))
	assert.Equal(t, "Hi Ana, welcome.", readFile(t, filepath.Join(anaDir, "001.body.txt")))
	assert.NoFileExists(t, filepath.Join(anaDir, "001.body.html"))

	boDir := filepath.Join(dir, "bo")
	assert.Equal(t, "Hello Bo\n", readFile(t, filepath.Join(boDir, "002.subject.txt")))
	assert.Equal(t, "<p>Hi Bo</p>", readFile(t, filepath.Join(boDir, "002.body.html")))
	assert.Equal(t, 2, p.Count())

	f, err := os.Open(filepath.Join(dir, dispatch.MboxFileName))
	require.NoError(t, err)
	defer f.Close()

	r := mbox.NewReader(f)
	var messages []string
	for {
		msg, err := r.NextMessage()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(msg)
		require.NoError(t, err)
		messages = append(messages, string(data))
	}
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0], "Subject: Hello Ana")
	assert.NotContains(t, messages[0], "audit@x.com")
	assert.Contains(t, messages[1], "Subject: Hello Bo")
}

func TestPreviewer_RejectsIncompleteMessage(t *testing.T) {
	t.Parallel()

	p := dispatch.NewPreviewer(t.TempDir())
	err := p.Send(context.Background(), &mailer.Email{Subject: "s", Text: "t"})
	require.ErrorIs(t, err, mailer.ErrNoRecipient)
	assert.Equal(t, 0, p.Count())
}

func TestPreviewer_EmptySubjectAndBody(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := dispatch.NewPreviewer(dir)
	ctx := context.Background()

	require.NoError(t, p.Send(ctx, &mailer.Email{To: []string{"ana@x.com"}, Text: "Hi Ana"}))
	require.NoError(t, p.Send(ctx, &mailer.Email{To: []string{"bo@x.com"}, Subject: "Hello Bo"}))
	assert.Equal(t, 2, p.Count())

	assert.Equal(t, "\n", readFile(t, filepath.Join(dir, "ana", "001.subject.txt")))
	assert.Empty(t, readFile(t, filepath.Join(dir, "bo", "002.body.txt")))
}

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"ana":                "ana",
		"ana.maria_x-1":      "ana.maria_x-1",
		"a b  c":             "a_b_c",
		"josé":               "jos_",
		"first+tag/../other": "first_tag_.._other",
		strings.Repeat("x", 130): strings.Repeat("x", 120),
	}
	for in, want := range tests {
		assert.Equal(t, want, dispatch.SanitizeName(in), in)
	}
}

func TestDryRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	idx := ledger.NewIndex()
	idx.Apply(ledger.Record{Email: "a@x.com", Status: ledger.StatusSuccess})

	preview := dispatch.NewPreviewer(dir)
	out, err := dispatch.New(greeter(), preview).
		Run(context.Background(), recipients("a@x.com", "bad", "b@x.com", "c@x.com"), idx, dispatch.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, out.Skipped)
	assert.Equal(t, 1, out.Invalid)
	assert.Equal(t, 2, out.Sent)
	assert.NoDirExists(t, filepath.Join(dir, "a"))
	assert.FileExists(t, filepath.Join(dir, "b", "001.subject.txt"))
	assert.FileExists(t, filepath.Join(dir, "c", "002.subject.txt"))
}
