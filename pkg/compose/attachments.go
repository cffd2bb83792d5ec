package compose

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dmitrymomot/mailmerge/pkg/contacts"
	"github.com/dmitrymomot/mailmerge/pkg/logger"
)

// AttachmentResolver expands attachment patterns into an ordered, deduplicated file list.
type AttachmentResolver struct {
	logger   *slog.Logger
	open     func(string) (*os.File, error)
	root     string
	fallback bool
}

// NewAttachmentResolver creates a resolver. When fallback is true and a recipient's
// patterns yield no files, every file directly inside <root>/<lang> is used instead.
func NewAttachmentResolver(root string, fallback bool, log *slog.Logger) *AttachmentResolver {
	if log == nil {
		log = logger.NewNope()
	}
	return &AttachmentResolver{root: root, fallback: fallback, logger: log, open: os.Open}
}

// Resolve expands patterns (separated by ',' or ';') in order. Each pattern's matches
// are sorted, filtered to regular files and appended; duplicates keep their first position.
// Patterns matching nothing and files that cannot be read are logged and skipped,
// so the message still goes out without them.
func (r *AttachmentResolver) Resolve(ctx context.Context, patterns, lang string) []string {
	var files []string
	seen := make(map[string]struct{})

	for _, pattern := range contacts.SplitList(patterns) {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			r.logger.WarnContext(ctx, "invalid attachment pattern",
				slog.String("pattern", pattern),
				slog.Any("error", err),
			)
			continue
		}
		if len(matches) == 0 {
			r.logger.WarnContext(ctx, ErrAttachmentPatternEmpty.Error(),
				slog.String("pattern", pattern),
			)
			continue
		}

		slices.Sort(matches)
		for _, m := range matches {
			if !isFile(m) || !r.readable(ctx, m) {
				continue
			}
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}

	if len(files) == 0 && r.fallback {
		return r.langDir(ctx, lang)
	}
	return files
}

// langDir lists regular files directly inside the language attachment directory, sorted by name.
func (r *AttachmentResolver) langDir(ctx context.Context, lang string) []string {
	dir := filepath.Join(r.root, NormalizeLang(lang))

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.WarnContext(ctx, "attachment directory unreadable",
				slog.String("dir", dir),
				slog.Any("error", err),
			)
		}
		return nil
	}

	var files []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if isFile(path) && r.readable(ctx, path) {
			files = append(files, path)
		}
	}
	return files
}

func (r *AttachmentResolver) readable(ctx context.Context, path string) bool {
	f, err := r.open(path)
	if err != nil {
		r.logger.WarnContext(ctx, "attachment unreadable, skipping",
			slog.String("path", path),
			slog.Any("error", err),
		)
		return false
	}
	_ = f.Close()
	return true
}
