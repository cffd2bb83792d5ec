package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Layouts accepted for one-shot and daily triggers.
const (
	AtLayout    = "2006-01-02 15:04"
	DailyLayout = "15:04"
)

// DefaultTimezone is used when no timezone is configured.
const DefaultTimezone = "Africa/Tunis"

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// LoadLocation resolves an IANA timezone name. Empty means DefaultTimezone.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Join(ErrInvalidTimezone, err)
	}
	return loc, nil
}

// ParseAt parses "YYYY-MM-DD HH:MM" in loc.
func ParseAt(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(AtLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: expected YYYY-MM-DD HH:MM", ErrInvalidTime, value)
	}
	return t, nil
}

// ParseDaily parses "HH:MM" into a schedule firing every day at that time in loc.
func ParseDaily(value string, loc *time.Location) (cron.Schedule, error) {
	t, err := time.Parse(DailyLayout, strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: expected HH:MM", ErrInvalidTime, value)
	}
	return cronParser.Parse(fmt.Sprintf("CRON_TZ=%s %d %d * * *", loc.String(), t.Minute(), t.Hour()))
}

// ParseCron parses a five-field crontab expression evaluated in loc.
// Day of week follows crontab numbering, 0 is Sunday and 1 is Monday;
// names such as "mon-fri" avoid any ambiguity.
func ParseCron(expr string, loc *time.Location) (cron.Schedule, error) {
	expr = strings.TrimSpace(expr)
	if len(strings.Fields(expr)) != 5 {
		return nil, fmt.Errorf("%w: %q: expected \"m h dom mon dow\"", ErrInvalidCron, expr)
	}
	sched, err := cronParser.Parse(fmt.Sprintf("CRON_TZ=%s %s", loc.String(), expr))
	if err != nil {
		return nil, errors.Join(ErrInvalidCron, err)
	}
	return sched, nil
}
