package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Composed mail is operator-authored but interpolates recipient columns, so
// previews get the user-generated-content policy plus the presentational
// attributes mail layouts rely on.
var emailPolicy = sync.OnceValue(func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("align", "valign", "width", "height", "bgcolor").
		OnElements("table", "tr", "td", "th", "img")
	p.AllowAttrs("target").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
	p.RequireNoFollowOnLinks(true)
	return p
})

// SanitizeEmailHTML keeps formatting, links, images and tables of an HTML
// message body and removes scripts, event handlers, styles and unsafe URLs.
func SanitizeEmailHTML(s string) string {
	return emailPolicy().Sanitize(s)
}
