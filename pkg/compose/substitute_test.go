package compose_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mailmerge/pkg/compose"
)

func TestSubstitute(t *testing.T) {
	t.Parallel()

	vars := map[string]string{
		"name":    "Ana",
		"company": "Acme",
		"empty":   "",
	}

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "plain name", text: "Hello $name", want: "Hello Ana"},
		{name: "braced name", text: "Hello ${name}!", want: "Hello Ana!"},
		{name: "braced before identifier chars", text: "${company}Corp", want: "AcmeCorp"},
		{name: "escaped dollar", text: "Price: $$10", want: "Price: $10"},
		{name: "unknown name kept", text: "Hi $nickname", want: "Hi $nickname"},
		{name: "unknown braced kept", text: "Hi ${nickname}", want: "Hi ${nickname}"},
		{name: "lone dollar kept", text: "costs 5$ total", want: "costs 5$ total"},
		{name: "dollar before digit kept", text: "$5 off", want: "$5 off"},
		{name: "unterminated brace kept", text: "Hi ${name", want: "Hi ${name"},
		{name: "empty value substituted", text: "[$empty]", want: "[]"},
		{name: "no placeholders", text: "Hello world", want: "Hello world"},
		{name: "case sensitive", text: "$Name", want: "$Name"},
		{name: "multiple", text: "$name from $company, $name", want: "Ana from Acme, Ana"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, compose.Substitute(tt.text, vars))
		})
	}
}

func TestSubstitute_NilVars(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Hello $name", compose.Substitute("Hello $name", nil))
}
