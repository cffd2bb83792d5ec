package smtp

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sync"

	gomail "github.com/go-mail/mail/v2"

	"github.com/dmitrymomot/mailmerge/pkg/mailer"
)

// Sender implements mailer.Sender over a single SMTP session.
// The session is opened on the first Send, reused for later messages,
// and dropped after a failure so the next Send dials again.
type Sender struct {
	dialer *gomail.Dialer
	config Config

	mu   sync.Mutex
	conn gomail.SendCloser
}

// New creates an SMTP sender. No connection is made until the first Send.
func New(ctx context.Context, cfg Config) *Sender {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = !cfg.StartTLS || cfg.Port == 465
	if !d.SSL {
		d.StartTLSPolicy = gomail.MandatoryStartTLS
	}
	if cfg.Timeout > 0 {
		d.Timeout = cfg.Timeout
	}
	if cfg.LocalName != "" {
		d.LocalName = cfg.LocalName
	}
	if cfg.OAuth.Enabled() {
		d.Auth = newXOAuth2(ctx, cfg)
	}

	return &Sender{dialer: d, config: cfg}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if err := mailer.Validate(email); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := NewMessage(email)
	if err != nil {
		return errors.Join(mailer.ErrSendFailed, err)
	}

	envelopeFrom := email.EnvelopeFrom
	if envelopeFrom == "" {
		envelopeFrom = s.config.Username
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		conn, err := s.dialer.Dial()
		if err != nil {
			return errors.Join(mailer.ErrSendFailed, fmt.Errorf("smtp: dial %s:%d: %w", s.config.Host, s.config.Port, err))
		}
		s.conn = conn
	}

	if err := s.conn.Send(envelopeFrom, email.Recipients(), msg); err != nil {
		_ = s.conn.Close()
		s.conn = nil
		return errors.Join(mailer.ErrSendFailed, fmt.Errorf("smtp: %w", err))
	}

	return nil
}

// Close ends the SMTP session, if one is open.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// NewMessage assembles the MIME message. Bcc is never written:
// blind copies travel only in the envelope recipient list.
func NewMessage(email *mailer.Email) (*gomail.Message, error) {
	m := gomail.NewMessage()

	if email.From != "" {
		if err := setAddressHeader(m, "From", email.From); err != nil {
			return nil, err
		}
	}
	m.SetHeader("To", formatList(m, email.To)...)
	if len(email.CC) > 0 {
		m.SetHeader("Cc", formatList(m, email.CC)...)
	}
	if email.ReplyTo != "" {
		if err := setAddressHeader(m, "Reply-To", email.ReplyTo); err != nil {
			return nil, err
		}
	}
	m.SetHeader("Subject", email.Subject)
	for k, v := range email.Headers {
		m.SetHeader(k, v)
	}

	m.SetBody("text/plain", email.Text)
	if email.HTML != "" {
		m.AddAlternative("text/html", email.HTML)
	}

	for _, a := range email.Attachments {
		m.Attach(a.Path,
			gomail.Rename(a.Filename),
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
		)
	}

	return m, nil
}

func setAddressHeader(m *gomail.Message, field, value string) error {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return fmt.Errorf("smtp: invalid %s address %q: %w", field, value, err)
	}
	m.SetAddressHeader(field, addr.Address, addr.Name)
	return nil
}

// formatList encodes display names where parseable and passes other values through untouched.
func formatList(m *gomail.Message, addrs []string) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if parsed, err := mail.ParseAddress(a); err == nil {
			out = append(out, m.FormatAddress(parsed.Address, parsed.Name))
			continue
		}
		out = append(out, a)
	}
	return out
}
