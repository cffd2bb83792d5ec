package schedule

import "errors"

var (
	ErrInvalidTimezone = errors.New("schedule: invalid timezone")
	ErrInvalidTime     = errors.New("schedule: invalid time")
	ErrInvalidCron     = errors.New("schedule: invalid cron expression")

	// ErrMisfired is returned for a one-shot time further in the past than the grace period.
	ErrMisfired = errors.New("schedule: one-shot time already passed")

	ErrNoTriggers     = errors.New("schedule: no triggers registered")
	ErrAlreadyStarted = errors.New("schedule: already started")
)
