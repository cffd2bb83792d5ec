package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/mailmerge/pkg/logger"
)

// DefaultMisfireGrace is how late a one-shot trigger may still fire.
const DefaultMisfireGrace = 300 * time.Second

// Job is the unit of work fired by a trigger.
type Job func(ctx context.Context) error

// Scheduler fires one job on one-shot, daily or cron triggers.
// Overlapping triggers coalesce: while a run is in flight, new triggers are
// skipped, and direct calls to Trigger join the in-flight run.
type Scheduler struct {
	loc    *time.Location
	grace  time.Duration
	key    string
	logger *slog.Logger
	now    func() time.Time

	cron  *cron.Cron
	group singleflight.Group

	mu        sync.Mutex
	job       Job
	recurring int
	pending   int
	started   bool
	ctx       context.Context
	idle      chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMisfireGrace overrides DefaultMisfireGrace.
func WithMisfireGrace(d time.Duration) Option {
	return func(s *Scheduler) {
		s.grace = d
	}
}

// WithKey names the coalescing group, typically the ledger location.
func WithKey(key string) Option {
	return func(s *Scheduler) {
		s.key = key
	}
}

// WithClock overrides the clock used to check one-shot misfires.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a scheduler running job in loc.
func New(loc *time.Location, job Job, opts ...Option) *Scheduler {
	s := &Scheduler{
		loc:    loc,
		grace:  DefaultMisfireGrace,
		key:    "batch",
		logger: logger.NewNope(),
		now:    time.Now,
		job:    job,
		idle:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger{s.logger}),
		cron.WithChain(
			cron.Recover(cronLogger{s.logger}),
			cron.SkipIfStillRunning(cronLogger{s.logger}),
		),
	)
	return s
}

// At registers a one-shot trigger. A time in the past still fires once,
// immediately, when it is within the misfire grace period.
func (s *Scheduler) At(at time.Time) error {
	if late := s.now().Sub(at); late > s.grace {
		return fmt.Errorf("%w: %s is %s late", ErrMisfired, at.In(s.loc).Format(AtLayout), late.Round(time.Second))
	}

	s.mu.Lock()
	s.pending++
	s.mu.Unlock()

	s.cron.Schedule(&onceSchedule{at: at}, cron.FuncJob(func() {
		s.fire("at")
		s.mu.Lock()
		s.pending--
		s.mu.Unlock()
		s.checkIdle()
	}))
	return nil
}

// Daily registers a trigger firing every day at "HH:MM".
func (s *Scheduler) Daily(hhmm string) error {
	sched, err := ParseDaily(hhmm, s.loc)
	if err != nil {
		return err
	}
	s.addRecurring(sched, "daily")
	return nil
}

// Cron registers a trigger from a five-field crontab expression.
func (s *Scheduler) Cron(expr string) error {
	sched, err := ParseCron(expr, s.loc)
	if err != nil {
		return err
	}
	s.addRecurring(sched, "cron")
	return nil
}

func (s *Scheduler) addRecurring(sched cron.Schedule, kind string) {
	s.mu.Lock()
	s.recurring++
	s.mu.Unlock()

	s.cron.Schedule(sched, cron.FuncJob(func() { s.fire(kind) }))
}

// Next returns the next activation time of every registered trigger.
func (s *Scheduler) Next() []time.Time {
	var out []time.Time
	now := s.now()
	for _, e := range s.cron.Entries() {
		next := e.Next
		if next.IsZero() {
			switch sched := e.Schedule.(type) {
			case *onceSchedule:
				next = sched.peek(now)
			default:
				next = sched.Next(now)
			}
		}
		if !next.IsZero() {
			out = append(out, next)
		}
	}
	return out
}

// Run starts the triggers and blocks until ctx is cancelled or, when only
// one-shot triggers are registered, until they have all fired. A running job
// is waited for before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	if s.recurring == 0 && s.pending == 0 {
		s.mu.Unlock()
		return ErrNoTriggers
	}
	s.started = true
	s.ctx = ctx
	s.mu.Unlock()

	for _, next := range s.Next() {
		s.logger.InfoContext(ctx, "next run scheduled", slog.Time("at", next.In(s.loc)))
	}

	s.cron.Start()

	select {
	case <-ctx.Done():
	case <-s.idle:
	}

	<-s.cron.Stop().Done()
	return nil
}

// Trigger runs the job now, joining any run already in flight.
func (s *Scheduler) Trigger(ctx context.Context) error {
	_, err, _ := s.group.Do(s.key, func() (any, error) {
		return nil, s.job(ctx)
	})
	return err
}

func (s *Scheduler) fire(kind string) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}

	s.logger.InfoContext(ctx, "trigger fired", slog.String("trigger", kind))
	if err := s.Trigger(ctx); err != nil {
		s.logger.ErrorContext(ctx, "scheduled run failed", slog.String("trigger", kind), slog.Any("error", err))
	}
}

func (s *Scheduler) checkIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recurring == 0 && s.pending == 0 {
		select {
		case <-s.idle:
		default:
			close(s.idle)
		}
	}
}

// onceSchedule activates exactly once. A time already in the past fires on
// the first tick.
type onceSchedule struct {
	mu    sync.Mutex
	at    time.Time
	fired bool
}

func (o *onceSchedule) Next(t time.Time) time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fired {
		return time.Time{}
	}
	o.fired = true
	if o.at.After(t) {
		return o.at
	}
	return t
}

func (o *onceSchedule) peek(t time.Time) time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case o.fired:
		return time.Time{}
	case o.at.After(t):
		return o.at
	default:
		return t
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}
