package mailer

import "errors"

var (
	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("mailer: email must have at least one recipient")

	// ErrRenderFailed indicates markdown conversion failed.
	ErrRenderFailed = errors.New("mailer: failed to render markdown")

	// ErrSendFailed indicates the transport rejected the email or could not reach the relay.
	ErrSendFailed = errors.New("mailer: failed to send email")

	// ErrAttachmentUnreadable indicates an attachment file could not be read at send time.
	ErrAttachmentUnreadable = errors.New("mailer: attachment unreadable")
)
