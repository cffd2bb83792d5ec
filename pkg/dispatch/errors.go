package dispatch

import "errors"

var (
	// ErrSourceUnavailable aborts a batch when the delivery ledger cannot be written.
	ErrSourceUnavailable = errors.New("dispatch: source unavailable")

	// ErrPreviewFailed indicates a dry-run preview could not be written.
	ErrPreviewFailed = errors.New("dispatch: preview failed")
)
