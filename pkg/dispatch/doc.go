// Package dispatch runs a mail batch: for each recipient, in input order, it
// consults the delivery ledger, composes the message, hands it to a transport
// and records the outcome.
//
// Each recipient moves through
//
//	Pending -> Invalid | Skipped | Sending -> Sent | Failed
//
// Invalid rows are logged and optionally recorded. Rows already delivered are
// skipped without any ledger event unless RunOptions.Resend is set. A compose
// or transport error is recorded as a failed event and the batch moves on; only
// a ledger write failure or context cancellation ends a batch early. After each
// successful send the dispatcher pauses for the configured delay, unless the
// batch is about to end.
//
// # Usage
//
//	idx, err := store.Load(ctx)
//	if err != nil {
//		return err
//	}
//
//	d := dispatch.New(composer, sender,
//		dispatch.WithRecorder(store),
//		dispatch.WithDelay(8*time.Second),
//		dispatch.WithLogger(log),
//	)
//	out, err := d.Run(ctx, recipients, idx, dispatch.RunOptions{Limit: 50})
//
// For a dry run pass a Previewer as the sender and no recorder:
//
//	preview := dispatch.NewPreviewer("logs/dry-run")
//	out, err := dispatch.New(composer, preview).Run(ctx, recipients, idx, opts)
package dispatch
