// Package schedule fires the mail batch at computed times.
//
// Three trigger kinds are supported, all evaluated in one IANA timezone
// (Africa/Tunis unless configured):
//
//   - At: a one-shot "YYYY-MM-DD HH:MM". A trigger up to five minutes late still
//     fires once; later than that it is rejected with ErrMisfired.
//   - Daily: "HH:MM" every day.
//   - Cron: a five-field crontab expression.
//
// Triggers never overlap. A trigger that fires while a run is in progress is
// skipped (robfig/cron SkipIfStillRunning), and Trigger calls made during a
// run join it through a singleflight group keyed by the ledger location.
//
//	loc, _ := schedule.LoadLocation("Africa/Tunis")
//	s := schedule.New(loc, runBatch, schedule.WithLogger(log), schedule.WithKey(ledgerPath))
//	if err := s.Daily("09:00"); err != nil {
//		return err
//	}
//	return s.Run(ctx) // blocks until ctx is done
//
// When only one-shot triggers are registered, Run returns after they fire.
package schedule
