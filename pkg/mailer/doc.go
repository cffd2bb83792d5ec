// Package mailer defines the transport contract shared by every way a
// composed message can leave the process.
//
// A transport implements Sender:
//
//	type Sender interface {
//		Send(ctx context.Context, email *Email) error
//	}
//
// Implementations live in subpackages: smtp (one authenticated session per
// batch, password or XOAUTH2) and resend (HTTP API). The dry-run previewer
// in package dispatch implements the same interface and writes files instead.
//
// # Email
//
// Email is fully composed before it reaches a transport: subject, plain text
// body, optional HTML alternative, attachments resolved to file paths, and the
// To, Cc and Bcc lists. Recipients returns the envelope list. Bcc addresses
// are delivered through the envelope only and never appear in a header.
//
// Validate checks the fields every transport requires:
//
//	if err := mailer.Validate(email); err != nil {
//		return err // ErrNoRecipient
//	}
//
// # Markdown
//
// Markdown converts a rendered plain text body into an HTML alternative with
// GitHub flavored markdown and hard line breaks. The CTA extension turns
//
//	[!button|Register](https://example.com/register)
//
// into an inline-styled button link.
//
// # Errors
//
// Transport failures wrap ErrSendFailed; validation errors are returned as is.
//
//	if errors.Is(err, mailer.ErrSendFailed) {
//		// recorded as a failed delivery
//	}
package mailer
