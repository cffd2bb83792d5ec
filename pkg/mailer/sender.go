package mailer

import "context"

// Sender defines the minimal interface that email transports implement.
// It accepts a fully composed Email and handles the actual delivery.
type Sender interface {
	// Send delivers an email message to every address in email.Recipients().
	// Returns an error if the transport did not accept the message.
	Send(ctx context.Context, email *Email) error
}

// Validate checks the fields every transport relies on. An empty subject
// or plain body is a valid message; the text part is still sent, just empty.
func Validate(email *Email) error {
	if email == nil || len(email.To) == 0 {
		return ErrNoRecipient
	}
	return nil
}
