package contacts

import "errors"

var (
	// ErrSourceUnavailable indicates the recipient source could not be opened or parsed.
	ErrSourceUnavailable = errors.New("contacts: recipient source unavailable")

	// ErrMissingEmailColumn indicates the header row has no email column.
	ErrMissingEmailColumn = errors.New("contacts: header has no email column")
)
