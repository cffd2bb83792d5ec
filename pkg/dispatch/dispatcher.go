package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mailmerge/pkg/contacts"
	"github.com/dmitrymomot/mailmerge/pkg/ledger"
	"github.com/dmitrymomot/mailmerge/pkg/logger"
	"github.com/dmitrymomot/mailmerge/pkg/mailer"
)

// Composer turns a recipient row into a message.
type Composer interface {
	Compose(ctx context.Context, r contacts.Recipient) (*mailer.Email, error)
}

// Recorder appends delivery events. ledger.Store satisfies it.
type Recorder interface {
	Append(ctx context.Context, rec ledger.Record) error
}

// RunOptions are supplied on every batch invocation.
type RunOptions struct {
	// Resend dispatches even to recipients already delivered.
	Resend bool
	// Limit stops the batch after this many successful sends. Zero or less means no limit.
	Limit int
}

// Outcome holds the counters of one batch.
type Outcome struct {
	RunID     string
	Attempted int
	Sent      int
	Skipped   int
	Failed    int
	Invalid   int
	Duration  time.Duration
}

// LogValue implements slog.LogValuer.
func (o Outcome) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", o.RunID),
		slog.Int("attempted", o.Attempted),
		slog.Int("sent", o.Sent),
		slog.Int("skipped", o.Skipped),
		slog.Int("failed", o.Failed),
		slog.Int("invalid", o.Invalid),
		slog.Duration("duration", o.Duration),
	)
}

// Dispatcher runs a batch strictly in order, one recipient at a time.
type Dispatcher struct {
	composer      Composer
	sender        mailer.Sender
	recorder      Recorder
	delay         time.Duration
	recordInvalid bool
	logger        *slog.Logger
	newRunID      func() string
	wait          func(ctx context.Context, d time.Duration) error
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRecorder sets where delivery events go. Without one nothing is recorded,
// which is what dry runs want.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

// WithDelay sets the pause observed after each successful send.
func WithDelay(delay time.Duration) Option {
	return func(d *Dispatcher) {
		d.delay = delay
	}
}

// WithRecordInvalid appends an "invalid" event for malformed addresses
// instead of only logging them.
func WithRecordInvalid(enabled bool) Option {
	return func(d *Dispatcher) {
		d.recordInvalid = enabled
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithRunIDGenerator replaces the UUID run identifier generator.
func WithRunIDGenerator(fn func() string) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.newRunID = fn
		}
	}
}

// New creates a dispatcher that composes with c and transmits through s.
func New(c Composer, s mailer.Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		composer: c,
		sender:   s,
		logger:   logger.NewNope(),
		newRunID: uuid.NewString,
		wait:     sleep,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run processes recipients in order against idx, which must be freshly
// loaded for this batch. Recipient-level failures are logged and recorded
// but never stop the batch. It returns early with the partial Outcome when
// ctx is cancelled or the ledger cannot be written.
func (d *Dispatcher) Run(ctx context.Context, recipients []contacts.Recipient, idx *ledger.Index, opts RunOptions) (Outcome, error) {
	if idx == nil {
		idx = ledger.NewIndex()
	}

	start := time.Now()
	out := Outcome{RunID: d.newRunID()}
	ctx = logger.WithRunID(ctx, out.RunID)

	d.logger.InfoContext(ctx, "batch started",
		slog.Int("recipients", len(recipients)),
		slog.Bool("resend", opts.Resend),
		slog.Int("limit", opts.Limit),
	)

	err := d.run(ctx, recipients, idx, opts, &out)
	out.Duration = time.Since(start)

	switch {
	case err != nil:
		d.logger.ErrorContext(ctx, "batch aborted", slog.Any("outcome", out), slog.Any("error", err))
	default:
		d.logger.InfoContext(ctx, "batch finished", slog.Any("outcome", out))
	}
	return out, err
}

func (d *Dispatcher) run(ctx context.Context, recipients []contacts.Recipient, idx *ledger.Index, opts RunOptions, out *Outcome) error {
	for i, r := range recipients {
		if err := ctx.Err(); err != nil {
			return err
		}

		email := r.Email()
		rctx := logger.WithRecipient(ctx, email)

		if !r.Valid() {
			out.Invalid++
			d.logger.WarnContext(rctx, "invalid recipient", slog.Int("row", i+1))
			if d.recordInvalid {
				if err := d.record(rctx, r, "", ledger.StatusInvalid, "invalid recipient"); err != nil {
					return err
				}
			}
			continue
		}

		if !opts.Resend && idx.Delivered(email) {
			out.Skipped++
			d.logger.InfoContext(rctx, "already sent, skipping")
			continue
		}

		out.Attempted++
		subject, err := d.deliver(rctx, r)
		if err != nil {
			out.Failed++
			d.logger.ErrorContext(rctx, "delivery failed", slog.String("subject", subject), slog.Any("error", err))
			if err := d.record(rctx, r, subject, ledger.StatusFailed, err.Error()); err != nil {
				return err
			}
			continue
		}

		out.Sent++
		d.logger.InfoContext(rctx, "sent", slog.String("subject", subject))
		if err := d.record(rctx, r, subject, ledger.StatusSuccess, ""); err != nil {
			return err
		}

		if opts.Limit > 0 && out.Sent >= opts.Limit {
			d.logger.InfoContext(ctx, "limit reached", slog.Int("limit", opts.Limit))
			return nil
		}

		if i < len(recipients)-1 && d.delay > 0 {
			if err := d.wait(ctx, d.delay); err != nil {
				return err
			}
		}
	}
	return nil
}

// deliver composes and transmits one message. The subject is returned even
// on transport failure; it is empty when composition failed.
func (d *Dispatcher) deliver(ctx context.Context, r contacts.Recipient) (string, error) {
	msg, err := d.composer.Compose(ctx, r)
	if err != nil {
		return "", err
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		return msg.Subject, err
	}
	return msg.Subject, nil
}

func (d *Dispatcher) record(ctx context.Context, r contacts.Recipient, subject string, status ledger.Status, reason string) error {
	if d.recorder == nil {
		return nil
	}
	// The attempt already happened; a cancelled run must still record it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	err := d.recorder.Append(ctx, ledger.Record{
		RunID:   logger.RunID(ctx),
		Email:   r.Email(),
		Name:    r.Name(),
		Lang:    r.Lang(),
		Subject: subject,
		Status:  status,
		Error:   reason,
	})
	if err != nil {
		return errors.Join(ErrSourceUnavailable, err)
	}
	return nil
}

const recordTimeout = 30 * time.Second

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
