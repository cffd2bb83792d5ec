package compose_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailmerge/pkg/compose"
)

func TestAttachmentResolver_Resolve(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := filepath.Join(dir, "files")
	writeFile(t, filepath.Join(files, "a.pdf"), "a")
	writeFile(t, filepath.Join(files, "b.pdf"), "b")
	writeFile(t, filepath.Join(files, "c.txt"), "c")
	writeFile(t, filepath.Join(files, "nested", "d.pdf"), "d")

	langRoot := filepath.Join(dir, "attachments")
	writeFile(t, filepath.Join(langRoot, "fr", "z.pdf"), "z")
	writeFile(t, filepath.Join(langRoot, "fr", "m.pdf"), "m")
	writeFile(t, filepath.Join(langRoot, "fr", ".hidden"), "h")
	require.NoError(t, os.MkdirAll(filepath.Join(langRoot, "fr", "sub"), 0o755))

	ctx := context.Background()
	r := compose.NewAttachmentResolver(langRoot, true, nil)

	t.Run("empty input and no language dir", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, r.Resolve(ctx, "", "en"))
	})

	t.Run("overlapping patterns deduplicate in first-seen order", func(t *testing.T) {
		t.Parallel()

		patterns := filepath.Join(files, "b.pdf") + ";" + filepath.Join(files, "*.pdf")
		got := r.Resolve(ctx, patterns, "en")
		assert.Equal(t, []string{
			filepath.Join(files, "b.pdf"),
			filepath.Join(files, "a.pdf"),
		}, got)
	})

	t.Run("pattern matches are sorted and filtered to files", func(t *testing.T) {
		t.Parallel()

		got := r.Resolve(ctx, filepath.Join(files, "*"), "en")
		assert.Equal(t, []string{
			filepath.Join(files, "a.pdf"),
			filepath.Join(files, "b.pdf"),
			filepath.Join(files, "c.txt"),
		}, got)
	})

	t.Run("recursive glob", func(t *testing.T) {
		t.Parallel()

		got := r.Resolve(ctx, filepath.Join(files, "**", "d.pdf"), "en")
		assert.Equal(t, []string{filepath.Join(files, "nested", "d.pdf")}, got)
	})

	t.Run("non matching pattern is skipped", func(t *testing.T) {
		t.Parallel()

		patterns := filepath.Join(files, "*.doc") + "," + filepath.Join(files, "c.txt")
		got := r.Resolve(ctx, patterns, "en")
		assert.Equal(t, []string{filepath.Join(files, "c.txt")}, got)
	})

	t.Run("falls back to language directory", func(t *testing.T) {
		t.Parallel()

		got := r.Resolve(ctx, filepath.Join(files, "*.doc"), " FR ")
		assert.Equal(t, []string{
			filepath.Join(langRoot, "fr", "m.pdf"),
			filepath.Join(langRoot, "fr", "z.pdf"),
		}, got)
	})

	t.Run("explicit files suppress fallback", func(t *testing.T) {
		t.Parallel()

		got := r.Resolve(ctx, filepath.Join(files, "a.pdf"), "fr")
		assert.Equal(t, []string{filepath.Join(files, "a.pdf")}, got)
	})

	t.Run("fallback disabled", func(t *testing.T) {
		t.Parallel()

		noFallback := compose.NewAttachmentResolver(langRoot, false, nil)
		assert.Empty(t, noFallback.Resolve(ctx, "", "fr"))
	})
}
