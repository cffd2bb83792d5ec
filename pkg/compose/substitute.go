package compose

import (
	"regexp"
	"strings"
)

// placeholder matches $$, $name and ${name}.
var placeholder = regexp.MustCompile(`\$(?:(\$)|([_A-Za-z][_A-Za-z0-9]*)|\{([_A-Za-z][_A-Za-z0-9]*)\})`)

// Substitute replaces $name and ${name} placeholders with values from vars
// and $$ with a single dollar sign.
//
// Unknown names keep their original placeholder text, and a '$' that does not
// start a valid placeholder is copied as is. Substitute never fails.
func Substitute(text string, vars map[string]string) string {
	if !strings.Contains(text, "$") {
		return text
	}

	matches := placeholder.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		last = m[1]

		switch {
		case m[2] >= 0: // $$
			b.WriteByte('$')
		case m[4] >= 0: // $name
			writeVar(&b, vars, text[m[4]:m[5]], text[m[0]:m[1]])
		case m[6] >= 0: // ${name}
			writeVar(&b, vars, text[m[6]:m[7]], text[m[0]:m[1]])
		}
	}
	b.WriteString(text[last:])

	return b.String()
}

func writeVar(b *strings.Builder, vars map[string]string, name, original string) {
	if v, ok := vars[name]; ok {
		b.WriteString(v)
		return
	}
	b.WriteString(original)
}

// singleLine collapses line breaks into spaces and trims the result.
func singleLine(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
