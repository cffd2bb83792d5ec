package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/mailmerge/pkg/logger"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	defaultTimeout = 5 * time.Second
)

// CheckFunc probes one dependency. The db and redis packages return these
// from their Healthcheck helpers.
type CheckFunc func(ctx context.Context) error

// Checks names the probes a readiness request runs.
type Checks map[string]CheckFunc

// Response is the readiness result, also served as JSON.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the outcome of a single probe.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type probe struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures ReadinessHandler.
type Option func(*probe)

// WithTimeout bounds the whole probe run. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(p *probe) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger logs failing probes at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(p *probe) {
		if l != nil {
			p.logger = l
		}
	}
}

func newProbe(opts ...Option) probe {
	p := probe{timeout: defaultTimeout, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// run executes every check concurrently under one deadline.
func (p probe) run(ctx context.Context, checks Checks) *Response {
	resp := &Response{Status: StatusHealthy}
	if len(checks) == 0 {
		return resp
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	resp.Checks = make(map[string]Check, len(checks))
	for name, check := range checks {
		g.Go(func() error {
			err := check(ctx)
			c := Check{Status: StatusHealthy}
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					err = errors.Join(ErrCheckTimeout, err)
				}
				c = Check{Status: StatusUnhealthy, Error: err.Error()}
				p.logger.WarnContext(ctx, "readiness check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}
			mu.Lock()
			resp.Checks[name] = c
			mu.Unlock()
			return err
		})
	}
	if g.Wait() != nil {
		resp.Status = StatusUnhealthy
	}
	return resp
}

// PathCheck fails while path is missing, such as the template root or the
// contacts file.
func PathCheck(path string) CheckFunc {
	return func(context.Context) error {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrPathMissing, path, err)
		}
		return nil
	}
}
