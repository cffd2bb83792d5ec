package health

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
)

// LivenessHandler reports that the process is up. It runs no checks.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, &Response{Status: StatusHealthy})
	}
}

// ReadinessHandler runs checks on every request and answers 503 when any
// of them fails. Plain text responses name the failing checks.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	p := newProbe(opts...)
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, p.run(r.Context(), checks))
	}
}

func respond(w http.ResponseWriter, r *http.Request, resp *Response) {
	status := http.StatusOK
	if resp.Status == StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-store")

	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if status == http.StatusOK {
		_, _ = w.Write([]byte("OK"))
		return
	}
	_, _ = w.Write([]byte("Service Unavailable: " + strings.Join(resp.Failed(), ", ")))
}

// Failed returns the names of failing checks in sorted order.
func (r *Response) Failed() []string {
	var names []string
	for name, c := range r.Checks {
		if c.Status == StatusUnhealthy {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
