package report

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrymomot/mailmerge/pkg/contacts"
	"github.com/dmitrymomot/mailmerge/pkg/ledger"
	"github.com/dmitrymomot/mailmerge/pkg/storage"
)

// FileName is the dashboard file written inside the log directory.
const FileName = "dashboard.html"

//go:embed templates/dashboard.html
var templates embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templates, "templates/dashboard.html"))

// Row is one recipient line of the dashboard.
type Row struct {
	Name      string
	Email     string
	Lang      string
	Delivered bool
	LastTime  time.Time
	Subject   string
	Status    ledger.Status
}

// Summary holds the dashboard totals.
type Summary struct {
	Total  int
	Sent   int
	Unsent int
	Failed int
}

// Dashboard is the rendered view of a recipient list against the ledger.
type Dashboard struct {
	Title       string
	GeneratedAt time.Time
	Summary     Summary
	Rows        []Row
}

// Build joins recipients with their latest ledger event, in recipient order.
func Build(recipients []contacts.Recipient, idx *ledger.Index) Dashboard {
	if idx == nil {
		idx = ledger.NewIndex()
	}

	d := Dashboard{
		Title: "Mailer Dashboard",
		Rows:  make([]Row, 0, len(recipients)),
	}

	for _, r := range recipients {
		row := Row{
			Name:  r.Get(contacts.FieldName),
			Email: r.Email(),
			Lang:  r.Get(contacts.FieldLang),
		}
		if rec, ok := idx.Latest(row.Email); ok {
			row.Delivered = rec.Status == ledger.StatusSuccess
			row.LastTime = rec.Time
			row.Subject = rec.Subject
			row.Status = rec.Status
		}

		d.Summary.Total++
		switch {
		case row.Delivered:
			d.Summary.Sent++
		case row.Status == ledger.StatusFailed:
			d.Summary.Failed++
		}
		d.Rows = append(d.Rows, row)
	}
	d.Summary.Unsent = d.Summary.Total - d.Summary.Sent

	return d
}

// Render writes the dashboard as a standalone HTML page. All values are escaped.
func Render(w io.Writer, d Dashboard) error {
	if err := dashboardTmpl.Execute(w, d); err != nil {
		return errors.Join(ErrRenderFailed, err)
	}
	return nil
}

// WriteFile renders the dashboard to path, replacing the previous file.
func WriteFile(path string, d Dashboard) error {
	var buf bytes.Buffer
	if err := Render(&buf, d); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Join(ErrWriteFailed, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return errors.Join(ErrWriteFailed, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Join(ErrWriteFailed, err)
	}
	return nil
}

// Publish renders the dashboard and uploads it to key. It returns a link to the object.
func Publish(ctx context.Context, pub storage.Publisher, key string, d Dashboard, linkTTL time.Duration) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, d); err != nil {
		return "", err
	}

	info, err := pub.Put(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "text/html; charset=utf-8")
	if err != nil {
		return "", errors.Join(ErrPublishFailed, err)
	}

	link, err := pub.URL(ctx, info.Key, linkTTL)
	if err != nil {
		return "", errors.Join(ErrPublishFailed, err)
	}
	return link, nil
}
