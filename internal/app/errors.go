package app

import "errors"

var (
	// ErrMissingCredentials is returned before any ledger access when a real
	// (non dry-run) batch has no transport credentials.
	ErrMissingCredentials = errors.New("app: missing transport credentials")

	// ErrRecipientNotFound indicates a preview was requested for an address
	// that is not in the contacts file.
	ErrRecipientNotFound = errors.New("app: recipient not found")
)
