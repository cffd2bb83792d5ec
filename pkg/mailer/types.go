package mailer

import (
	"mime"
	"net/mail"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tags label a message for providers that report on them, such as the
// template language. Transports without tag support ignore them.
type Tags map[string]string

// Recipient formats a name and email into RFC 5322 address format.
// Returns "Name <email>" if name is provided, otherwise just email. Names
// with commas, quotes or other specials are quoted so the result still parses.
// An empty email yields an empty address regardless of name.
func Recipient(name, email string) string {
	if name == "" || email == "" {
		return email
	}
	if strings.ContainsFunc(name, isSpecial) {
		return (&mail.Address{Name: name, Address: email}).String()
	}
	return name + " <" + email + ">"
}

// isSpecial reports runes outside RFC 5322 atext and plain spaces.
func isSpecial(r rune) bool {
	switch {
	case r == ' ', unicode.IsLetter(r), unicode.IsDigit(r):
		return false
	case r < utf8.RuneSelf && strings.ContainsRune("!#$%&'*+-/=?^_`{|}~", r):
		return false
	}
	return true
}

// Email is a fully composed message ready for a transport.
//
// BCC addresses are part of the delivery envelope only. Transports must never
// write them into a header that other recipients can see.
type Email struct {
	Headers      map[string]string // Custom headers
	Tags         Tags              // Provider-specific tags/categories
	Subject      string            // Single-line subject
	Text         string            // Plain text body, sent even when empty
	HTML         string            // Optional HTML alternative
	From         string            // Header sender, "Name <addr>"
	EnvelopeFrom string            // SMTP envelope sender address
	ReplyTo      string            // Reply-to address
	To           []string          // Primary recipients (at least one required)
	CC           []string          // Carbon copy recipients
	BCC          []string          // Blind carbon copy recipients
	Attachments  []Attachment      // Files attached in order
}

// Recipients returns the full envelope recipient list: To, then CC, then BCC.
func (e *Email) Recipients() []string {
	out := make([]string, 0, len(e.To)+len(e.CC)+len(e.BCC))
	out = append(out, e.To...)
	out = append(out, e.CC...)
	out = append(out, e.BCC...)
	return out
}

// Attachment references a file on disk attached to an email.
// Content is read by the transport at send time.
type Attachment struct {
	Path        string // Location on disk
	Filename    string // Display name for the attachment
	ContentType string // MIME type (e.g., "application/pdf")
}

// NewAttachment builds an Attachment for a file path, guessing its MIME type from the extension.
func NewAttachment(path string) Attachment {
	return Attachment{
		Path:        path,
		Filename:    filepath.Base(path),
		ContentType: ContentTypeByName(path),
	}
}

// ContentTypeByName guesses a MIME type from a file name.
// Compressed encodings and unknown extensions fall back to application/octet-stream.
func ContentTypeByName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case "", ".gz", ".bz2", ".xz", ".z", ".br":
		return MIMEOctetStream
	}
	ct := mime.TypeByExtension(ext)
	if ct == "" {
		return MIMEOctetStream
	}
	return ct
}

// MIMEOctetStream is the fallback attachment content type.
const MIMEOctetStream = "application/octet-stream"
