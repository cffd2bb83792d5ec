package compose

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/dmitrymomot/mailmerge/pkg/contacts"
	"github.com/dmitrymomot/mailmerge/pkg/logger"
	"github.com/dmitrymomot/mailmerge/pkg/mailer"
)

// Substitution keys filled from Config before recipient fields are applied.
const (
	VarFromName  = "from_name"
	VarFromEmail = "from_email"
	VarReplyTo   = "reply_to"
)

// Config is the immutable sender identity and template layout used for every recipient.
type Config struct {
	TemplateRoot   string
	AttachmentRoot string

	// SenderName and SenderEmail form the From header and the envelope sender.
	SenderName  string
	SenderEmail string

	// FromName, FromEmail and ReplyTo are exposed to templates as $from_name,
	// $from_email and $reply_to. Empty values fall back to the sender identity.
	FromName  string
	FromEmail string
	ReplyTo   string

	// LangAttachmentFallback attaches <AttachmentRoot>/<lang>/* when a row resolves no files.
	LangAttachmentFallback bool

	// MarkdownHTML renders the plain body as markdown into the HTML part
	// when no HTML template exists for the recipient.
	MarkdownHTML bool
}

// Defaults returns the substitution values every recipient starts from.
func (c Config) Defaults() map[string]string {
	fromName := c.FromName
	if fromName == "" {
		fromName = c.SenderName
	}
	fromEmail := c.FromEmail
	if fromEmail == "" {
		fromEmail = c.SenderEmail
	}
	replyTo := c.ReplyTo
	if replyTo == "" {
		replyTo = c.SenderEmail
	}
	return map[string]string{
		VarFromName:  fromName,
		VarFromEmail: fromEmail,
		VarReplyTo:   replyTo,
	}
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the logger used for attachment warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// Composer merges recipient rows with templates into composed emails.
// It holds no per-recipient state and composing the same row twice yields identical output.
type Composer struct {
	templates   *TemplateResolver
	attachments *AttachmentResolver
	markdown    *mailer.Markdown
	logger      *slog.Logger
	config      Config
}

// New creates a Composer.
func New(cfg Config, opts ...Option) *Composer {
	c := &Composer{
		config:    cfg,
		templates: NewTemplateResolver(cfg.TemplateRoot),
		logger:    logger.NewNope(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.attachments = NewAttachmentResolver(cfg.AttachmentRoot, cfg.LangAttachmentFallback, c.logger)
	if cfg.MarkdownHTML {
		c.markdown = mailer.NewMarkdown()
	}
	return c
}

// Compose builds the email for one recipient.
// Returns ErrInvalidRecipient for a malformed address and ErrTemplateMissing
// when the subject or body template cannot be found.
func (c *Composer) Compose(ctx context.Context, r contacts.Recipient) (*mailer.Email, error) {
	to := r.Email()
	if !contacts.ValidEmail(to) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecipient, to)
	}

	set, err := c.templates.Resolve(r.Lang(), Overrides{
		Subject:  r.Override(contacts.FieldSubjectFile),
		Body:     r.Override(contacts.FieldBodyFile),
		BodyHTML: r.Override(contacts.FieldBodyHTMLFile),
	})
	if err != nil {
		return nil, err
	}

	defaults := c.config.Defaults()
	vars := maps.Clone(defaults)
	maps.Copy(vars, r.Fields())

	email := &mailer.Email{
		Subject:      singleLine(Substitute(set.Subject, vars)),
		Text:         Substitute(set.Text, vars),
		From:         mailer.Recipient(c.config.SenderName, c.config.SenderEmail),
		EnvelopeFrom: c.config.SenderEmail,
		ReplyTo:      defaults[VarReplyTo],
		To:           []string{to},
		CC:           r.CC(),
		BCC:          r.BCC(),
		Tags:         mailer.Tags{"lang": set.Lang},
	}

	switch {
	case set.HTML != "":
		email.HTML = Substitute(set.HTML, vars)
	case c.markdown != nil:
		html, err := c.markdown.Convert(email.Text)
		if err != nil {
			return nil, err
		}
		email.HTML = html
	}

	for _, path := range c.attachments.Resolve(ctx, r.Attachments(), set.Lang) {
		email.Attachments = append(email.Attachments, mailer.NewAttachment(path))
	}

	return email, nil
}
