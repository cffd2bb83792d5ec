// Package compose turns a recipient row and a language-specific template set
// into a ready-to-send mailer.Email.
//
// Composition runs in four steps:
//
//  1. TemplateResolver locates the subject, plain body and optional HTML body
//     for the recipient's language (or the per-row override paths).
//  2. Substitute renders each template against the recipient fields layered
//     over sender defaults.
//  3. AttachmentResolver expands the recipient's attachment patterns, falling
//     back to the language attachment directory.
//  4. Composer assembles addresses: To is the recipient, Cc and Bcc come from
//     the row. Bcc addresses are kept out of every header.
//
// # Templates
//
// Templates live in a directory per language:
//
//	templates/
//	  en/subject.txt
//	  en/body.txt
//	  en/body.html   (optional)
//	  fr/subject.txt
//	  fr/body.txt
//
// Placeholders use the $name or ${name} syntax; $$ produces a literal dollar
// sign. Placeholders with no matching field are left in the output verbatim,
// so a typo in a template never aborts a batch.
//
// # Usage
//
//	c := compose.New(compose.Config{
//		TemplateRoot:   "templates",
//		AttachmentRoot: "attachments",
//		SenderName:     "Team",
//		SenderEmail:    "team@example.com",
//	}, compose.WithLogger(log))
//
//	email, err := c.Compose(ctx, recipient)
//	switch {
//	case errors.Is(err, compose.ErrInvalidRecipient):
//		// bad address in the row
//	case errors.Is(err, compose.ErrTemplateMissing):
//		// no subject or body template for the language
//	}
package compose
