package mailer

import (
	"bytes"
	"errors"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Markdown converts rendered plain text bodies into an HTML alternative.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates a converter with GitHub flavored markdown, call-to-action
// buttons and hard line breaks, so plain text letters keep their line
// structure in the HTML part.
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, CTA()),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// Convert renders markdown source to an HTML fragment.
func (m *Markdown) Convert(source string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(source), &buf); err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	return buf.String(), nil
}
