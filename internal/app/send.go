package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/mailmerge/internal/config"
	"github.com/dmitrymomot/mailmerge/pkg/contacts"
	"github.com/dmitrymomot/mailmerge/pkg/dispatch"
	"github.com/dmitrymomot/mailmerge/pkg/mailer"
	"github.com/dmitrymomot/mailmerge/pkg/mailer/resend"
	"github.com/dmitrymomot/mailmerge/pkg/mailer/smtp"
)

const lockPrefix = "mailmerge:batch:"

// SendOptions are the per-invocation batch flags.
type SendOptions struct {
	DryRun bool
	Resend bool
	// Limit caps successful sends. Zero or less means no limit.
	Limit int
	// OutDir receives dry-run previews. Defaults to <log dir>/dry-run.
	OutDir string
}

// Send runs one batch over the contacts file and regenerates the dashboard.
// A real batch fails with ErrMissingCredentials before the ledger is read
// when the transport is not configured.
func (a *App) Send(ctx context.Context, opts SendOptions) (dispatch.Outcome, error) {
	if !opts.DryRun {
		if missing := a.cfg.MissingCredentials(); len(missing) > 0 {
			return dispatch.Outcome{}, fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
		}
	}

	if opts.DryRun || a.locker == nil {
		return a.send(ctx, opts)
	}

	var out dispatch.Outcome
	err := a.locker.WithLock(ctx, lockPrefix+a.LedgerKey(), func(ctx context.Context) error {
		var err error
		out, err = a.send(ctx, opts)
		return err
	})
	return out, err
}

func (a *App) send(ctx context.Context, opts SendOptions) (dispatch.Outcome, error) {
	recipients, err := contacts.LoadFile(a.cfg.ContactsCSV)
	if err != nil {
		return dispatch.Outcome{}, err
	}

	idx, err := a.store.Load(ctx)
	if err != nil {
		return dispatch.Outcome{}, err
	}

	dopts := []dispatch.Option{dispatch.WithLogger(a.logger)}

	var sender mailer.Sender
	var preview *dispatch.Previewer
	if opts.DryRun {
		dir := opts.OutDir
		if dir == "" {
			dir = a.cfg.DryRunDir()
		}
		preview = dispatch.NewPreviewer(dir)
		sender = preview
	} else {
		transport, closeFn := a.transport(ctx)
		defer func() {
			if err := closeFn(); err != nil {
				a.logger.WarnContext(ctx, "closing transport", slog.Any("error", err))
			}
		}()
		sender = transport
		dopts = append(dopts,
			dispatch.WithRecorder(a.store),
			dispatch.WithDelay(a.cfg.Delay()),
			dispatch.WithRecordInvalid(a.cfg.RecordInvalid),
		)
	}

	out, runErr := dispatch.New(a.composer, sender, dopts...).Run(ctx, recipients, idx, dispatch.RunOptions{
		Resend: opts.Resend,
		Limit:  opts.Limit,
	})

	if preview != nil {
		a.logger.InfoContext(ctx, "dry-run previews written",
			slog.String("dir", preview.Dir()),
			slog.Int("messages", preview.Count()),
		)
	}

	// The dashboard reflects whatever the batch managed to record, even
	// when it stopped early.
	if _, err := a.writeReport(context.WithoutCancel(ctx), recipients); err != nil {
		a.logger.ErrorContext(ctx, "dashboard not updated", slog.Any("error", err))
	}

	return out, runErr
}

// transport returns the configured sender and a function closing it.
func (a *App) transport(ctx context.Context) (mailer.Sender, func() error) {
	noop := func() error { return nil }
	if a.sender != nil {
		return a.sender, noop
	}

	switch a.cfg.Transport {
	case config.TransportResend:
		return resend.New(a.cfg.Resend), noop
	default:
		s := smtp.New(ctx, a.cfg.SMTP)
		return s, s.Close
	}
}
