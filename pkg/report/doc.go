// Package report renders the delivery dashboard: one row per recipient with
// its latest ledger event, plus totals.
//
//	idx, _ := store.Load(ctx)
//	d := report.Build(recipients, idx)
//	d.GeneratedAt = time.Now()
//	err := report.WriteFile(filepath.Join("logs", report.FileName), d)
//
// The page is produced with html/template, so every recipient value is
// escaped. Publish uploads the same page through a storage.Publisher.
package report
