package ledger

import "errors"

var (
	// ErrStoreUnavailable indicates the ledger could not be read or written.
	ErrStoreUnavailable = errors.New("ledger: store unavailable")

	// ErrMalformedLog indicates the ledger log has no usable header.
	ErrMalformedLog = errors.New("ledger: malformed log")
)
