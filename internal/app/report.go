package app

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/mailmerge/pkg/contacts"
	"github.com/dmitrymomot/mailmerge/pkg/mailer"
	"github.com/dmitrymomot/mailmerge/pkg/report"
	"github.com/dmitrymomot/mailmerge/pkg/storage"
)

// Dashboard builds the delivery dashboard from the contacts file and a fresh ledger read.
func (a *App) Dashboard(ctx context.Context) (report.Dashboard, error) {
	recipients, err := contacts.LoadFile(a.cfg.ContactsCSV)
	if err != nil {
		return report.Dashboard{}, err
	}
	idx, err := a.store.Load(ctx)
	if err != nil {
		return report.Dashboard{}, err
	}
	return report.Build(recipients, idx), nil
}

// Report writes the dashboard file and, when report storage is configured,
// uploads it. It returns the published link, or the local path when nothing
// was uploaded.
func (a *App) Report(ctx context.Context) (string, error) {
	recipients, err := contacts.LoadFile(a.cfg.ContactsCSV)
	if err != nil {
		return "", err
	}
	return a.writeReport(ctx, recipients)
}

func (a *App) writeReport(ctx context.Context, recipients []contacts.Recipient) (string, error) {
	idx, err := a.store.Load(ctx)
	if err != nil {
		return "", err
	}

	d := report.Build(recipients, idx)
	path := a.cfg.DashboardPath()
	if err := report.WriteFile(path, d); err != nil {
		return "", err
	}
	a.logger.InfoContext(ctx, "dashboard written",
		slog.String("path", path),
		slog.Int("sent", d.Summary.Sent),
		slog.Int("unsent", d.Summary.Unsent),
	)

	if a.publisher == nil {
		return path, nil
	}

	key := a.cfg.Report.Key
	if key == "" {
		key = storage.DefaultKey
	}
	link, err := report.Publish(ctx, a.publisher, key, d, a.cfg.ReportLinkTTL)
	if err != nil {
		return path, err
	}
	a.logger.InfoContext(ctx, "dashboard published", slog.String("url", link))
	return link, nil
}

// Preview composes the message for one contact without sending it.
func (a *App) Preview(ctx context.Context, email string) (*mailer.Email, error) {
	recipients, err := contacts.LoadFile(a.cfg.ContactsCSV)
	if err != nil {
		return nil, err
	}

	want := contacts.NormalizeEmail(email)
	for _, r := range recipients {
		if r.Email() == want {
			return a.composer.Compose(ctx, r)
		}
	}
	return nil, ErrRecipientNotFound
}
