package web

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/mailmerge/internal/app"
	"github.com/dmitrymomot/mailmerge/pkg/compose"
	"github.com/dmitrymomot/mailmerge/pkg/contacts"
	"github.com/dmitrymomot/mailmerge/pkg/health"
	"github.com/dmitrymomot/mailmerge/pkg/logger"
	"github.com/dmitrymomot/mailmerge/pkg/mailer"
	"github.com/dmitrymomot/mailmerge/pkg/report"
	"github.com/dmitrymomot/mailmerge/pkg/sanitizer"
)

// Backend is the part of the application the HTTP surface reads from.
type Backend interface {
	Dashboard(ctx context.Context) (report.Dashboard, error)
	Preview(ctx context.Context, email string) (*mailer.Email, error)
}

var previewTmpl = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Subject}}</title>
<style>body{font-family:system-ui,sans-serif;margin:2rem}dt{font-weight:600}pre{white-space:pre-wrap;background:#f6f6f6;padding:1rem}</style>
</head><body>
<dl>
<dt>From</dt><dd>{{.From}}</dd>
<dt>To</dt><dd>{{range .To}}{{.}} {{end}}</dd>
{{if .CC}}<dt>Cc</dt><dd>{{range .CC}}{{.}} {{end}}</dd>{{end}}
{{if .ReplyTo}}<dt>Reply-To</dt><dd>{{.ReplyTo}}</dd>{{end}}
<dt>Subject</dt><dd>{{.Subject}}</dd>
{{if .Attachments}}<dt>Attachments</dt><dd>{{range .Attachments}}{{.Filename}} {{end}}</dd>{{end}}
</dl>
<h2>Text</h2>
<pre>{{.Text}}</pre>
{{if .HTML}}<h2>HTML</h2>
<div class="html">{{.HTML}}</div>{{end}}
</body></html>
`))

type previewView struct {
	*mailer.Email
	HTML template.HTML
}

// NewRouter mounts the daemon routes:
//
//	GET /healthz          liveness
//	GET /readyz           readiness, runs checks
//	GET /dashboard        delivery dashboard
//	GET /preview/{email}  composed message for one contact, never sent
func NewRouter(b Backend, checks health.Checks, log *slog.Logger) http.Handler {
	if log == nil {
		log = logger.NewNope()
	}
	h := &handler{backend: b, logger: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	r.Get("/healthz", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler(checks, health.WithLogger(log)))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})
	r.Get("/dashboard", h.dashboard)
	r.Get("/preview/{email}", h.preview)

	return r
}

type handler struct {
	backend Backend
	logger  *slog.Logger
}

func (h *handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.backend.Dashboard(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := report.Render(w, d); err != nil {
		h.logger.ErrorContext(r.Context(), "render dashboard", slog.Any("error", err))
	}
}

func (h *handler) preview(w http.ResponseWriter, r *http.Request) {
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		http.Error(w, "bad address", http.StatusBadRequest)
		return
	}

	msg, err := h.backend.Preview(logger.WithRecipient(r.Context(), email), email)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	view := previewView{
		Email: msg,
		// Template output is operator-authored but carries recipient
		// columns verbatim, so it is sanitized before being inlined.
		HTML: template.HTML(sanitizer.SanitizeEmailHTML(msg.HTML)), //nolint:gosec // sanitized above
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := previewTmpl.Execute(w, view); err != nil {
		h.logger.ErrorContext(r.Context(), "render preview", slog.Any("error", err))
	}
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, app.ErrRecipientNotFound):
		status = http.StatusNotFound
	case errors.Is(err, compose.ErrInvalidRecipient), errors.Is(err, compose.ErrTemplateMissing):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, contacts.ErrSourceUnavailable):
		status = http.StatusServiceUnavailable
	}

	h.logger.WarnContext(r.Context(), "request failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Any("error", err),
	)
	http.Error(w, http.StatusText(status), status)
}
