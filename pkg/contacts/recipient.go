package contacts

import (
	"maps"
	"strings"
)

// Recognized column names.
const (
	FieldEmail        = "email"
	FieldName         = "name"
	FieldLang         = "lang"
	FieldCC           = "cc"
	FieldBCC          = "bcc"
	FieldAttachments  = "attachments"
	FieldSubjectFile  = "subject_file"
	FieldBodyFile     = "body_file"
	FieldBodyHTMLFile = "body_html_file"
)

// Recipient is one row of the recipient source.
// It is never mutated after load.
type Recipient struct {
	fields map[string]string
}

// NewRecipient builds a Recipient from a field map. The map is copied.
func NewRecipient(fields map[string]string) Recipient {
	return Recipient{fields: maps.Clone(fields)}
}

// Get returns the raw value of a column, or "" if absent.
func (r Recipient) Get(key string) string {
	return r.fields[key]
}

// Email returns the trimmed primary address. This is the identity key used by the ledger.
func (r Recipient) Email() string {
	return NormalizeEmail(r.fields[FieldEmail])
}

// Name returns the trimmed display name.
func (r Recipient) Name() string {
	return strings.TrimSpace(r.fields[FieldName])
}

// Lang returns the raw trimmed language column; normalization happens in the composer.
func (r Recipient) Lang() string {
	return strings.TrimSpace(r.fields[FieldLang])
}

// CC returns the parsed carbon-copy list.
func (r Recipient) CC() []string {
	return SplitList(r.fields[FieldCC])
}

// BCC returns the parsed blind-copy list.
func (r Recipient) BCC() []string {
	return SplitList(r.fields[FieldBCC])
}

// Attachments returns the raw attachment pattern string.
func (r Recipient) Attachments() string {
	return r.fields[FieldAttachments]
}

// Override returns the trimmed template override path stored in the given column.
func (r Recipient) Override(column string) string {
	return strings.TrimSpace(r.fields[column])
}

// Fields returns a copy of every column, for template substitution.
func (r Recipient) Fields() map[string]string {
	return maps.Clone(r.fields)
}

// Valid reports whether the primary address is usable for dispatch.
func (r Recipient) Valid() bool {
	return ValidEmail(r.Email())
}

// NormalizeEmail trims surrounding whitespace. Case is preserved.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// ValidEmail is the syntactic check applied before composition: non-empty and contains '@'.
func ValidEmail(email string) bool {
	return email != "" && strings.Contains(email, "@")
}

// SplitList splits a comma or semicolon separated list, trimming entries and dropping empty ones.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
