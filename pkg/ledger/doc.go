// Package ledger records every delivery attempt and answers "was this
// recipient already delivered?" for resumable batches.
//
// The ledger is an append-only event log. Each dispatch attempt appends one
// Record, successful or not. The skip decision uses an Index rebuilt by
// replaying the whole log on every Load, so the latest event for an address
// wins: an address whose last event is "failed" is retried even if an earlier
// event was "success".
//
// Two stores are provided:
//
//   - CSVStore: a CSV file with the columns time,email,name,lang,subject,status,error.
//     A missing file is an empty ledger. The header is written with the first event.
//   - PostgresStore: a delivery_events table created by the embedded goose migrations.
//
// # Usage
//
//	store := ledger.NewCSVStore("logs/sent.csv")
//
//	idx, err := store.Load(ctx) // call once per batch, never cache across batches
//	if err != nil {
//		return err
//	}
//	if idx.Delivered("a@example.com") {
//		// skip
//	}
//
//	err = store.Append(ctx, ledger.Record{
//		Email:   "a@example.com",
//		Subject: "Hello",
//		Status:  ledger.StatusSuccess,
//	})
//
// Only one process may append to a given ledger at a time; see the redis
// package for an optional cross-process lock.
package ledger
