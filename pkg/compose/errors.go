package compose

import "errors"

var (
	// ErrInvalidRecipient indicates the row has no email or the email lacks '@'.
	ErrInvalidRecipient = errors.New("compose: invalid recipient")

	// ErrTemplateMissing indicates a required subject or body template could not be found.
	ErrTemplateMissing = errors.New("compose: template missing")

	// ErrAttachmentPatternEmpty is logged when an attachment pattern matches nothing.
	// It never fails composition.
	ErrAttachmentPatternEmpty = errors.New("compose: attachment pattern matched nothing")
)
