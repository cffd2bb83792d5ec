package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCTA(t *testing.T) {
	t.Parallel()

	md := NewMarkdown()

	tests := []struct {
		name     string
		source   string
		contains []string
		excludes []string
	}{
		{
			name:     "renders styled link",
			source:   "[!button|Register](https://example.com/join?lang=fr)",
			contains: []string{`<a href="https://example.com/join?lang=fr" style="display:inline-block;`, `>Register</a>`},
		},
		{
			name:     "inside a letter",
			source:   "Dear Ana,\n\n[!button|Open](https://example.com)\n\nThanks",
			contains: []string{"Dear Ana,", `href="https://example.com"`, "Thanks"},
		},
		{
			name:     "escapes label",
			source:   `[!button|<b>Go</b>](https://example.com)`,
			contains: []string{"&lt;b&gt;Go&lt;/b&gt;"},
			excludes: []string{"<b>"},
		},
		{
			name:     "drops javascript target",
			source:   `[!button|Click](javascript:alert(1))`,
			contains: []string{"Click"},
			excludes: []string{"javascript:", "<a "},
		},
		{
			name:     "regular link untouched",
			source:   "[Docs](https://example.com/docs)",
			contains: []string{`<a href="https://example.com/docs">Docs</a>`},
			excludes: []string{"style="},
		},
		{
			name:     "incomplete syntax stays text",
			source:   "[!button|Half",
			contains: []string{"[!button|Half"},
			excludes: []string{"<a "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := md.Convert(tt.source)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestCTANode_Kind(t *testing.T) {
	t.Parallel()

	require.Equal(t, KindCTA, (&CTANode{}).Kind())
}
