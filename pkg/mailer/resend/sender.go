package resend

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/mailmerge/pkg/mailer"
)

// Sender delivers composed messages through the Resend HTTP API.
type Sender struct {
	client *resend.Client
	from   string
}

// New creates a Resend sender. Messages without a From header are sent
// from the configured sender identity.
func New(cfg Config) *Sender {
	return &Sender{
		client: resend.NewClient(cfg.APIKey),
		from:   mailer.Recipient(cfg.SenderName, cfg.SenderEmail),
	}
}

// Send implements mailer.Sender. Resend builds the envelope from To, Cc and
// Bcc, so BCC addresses never reach a visible header.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if err := mailer.Validate(email); err != nil {
		return err
	}

	req, err := s.request(email)
	if err != nil {
		return errors.Join(mailer.ErrSendFailed, err)
	}
	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return errors.Join(mailer.ErrSendFailed, fmt.Errorf("resend: %w", err))
	}
	return nil
}

func (s *Sender) request(email *mailer.Email) (*resend.SendEmailRequest, error) {
	req := &resend.SendEmailRequest{
		From:    cmp.Or(email.From, s.from),
		To:      email.To,
		Cc:      email.CC,
		Bcc:     email.BCC,
		ReplyTo: email.ReplyTo,
		Subject: email.Subject,
		Text:    email.Text,
		Html:    email.HTML,
		Headers: email.Headers,
	}

	for _, a := range email.Attachments {
		// Resend takes attachment bytes inline.
		content, err := os.ReadFile(a.Path)
		if err != nil {
			return nil, errors.Join(mailer.ErrAttachmentUnreadable, err)
		}
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename:    a.Filename,
			Content:     content,
			ContentType: a.ContentType,
		})
	}

	for _, name := range slices.Sorted(maps.Keys(email.Tags)) {
		req.Tags = append(req.Tags, resend.Tag{Name: name, Value: email.Tags[name]})
	}
	return req, nil
}

