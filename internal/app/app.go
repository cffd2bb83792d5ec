package app

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/mailmerge/internal/config"
	"github.com/dmitrymomot/mailmerge/pkg/compose"
	"github.com/dmitrymomot/mailmerge/pkg/db"
	"github.com/dmitrymomot/mailmerge/pkg/health"
	"github.com/dmitrymomot/mailmerge/pkg/ledger"
	"github.com/dmitrymomot/mailmerge/pkg/logger"
	"github.com/dmitrymomot/mailmerge/pkg/mailer"
	"github.com/dmitrymomot/mailmerge/pkg/redis"
	"github.com/dmitrymomot/mailmerge/pkg/storage"
)

// App owns the long-lived collaborators of a mailmerge process: the
// composer, the delivery ledger and the optional lock and report storage.
// It is safe to run batches from several goroutines only when they are
// serialized by the caller, as the scheduler does.
type App struct {
	cfg       config.Config
	logger    *slog.Logger
	composer  *compose.Composer
	store     ledger.Store
	pool      *pgxpool.Pool
	redis     goredis.UniversalClient
	locker    *redis.Locker
	publisher storage.Publisher
	sender    mailer.Sender
	closers   []func() error
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithSender replaces the configured transport.
func WithSender(s mailer.Sender) Option {
	return func(a *App) {
		a.sender = s
	}
}

// WithStore replaces the configured delivery ledger.
func WithStore(s ledger.Store) Option {
	return func(a *App) {
		a.store = s
	}
}

// WithPublisher replaces the configured dashboard storage.
func WithPublisher(p storage.Publisher) Option {
	return func(a *App) {
		a.publisher = p
	}
}

// New validates cfg and opens every configured backend. Postgres ledger
// migrations are applied before New returns.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.composer = compose.New(cfg.Compose(), compose.WithLogger(a.logger))

	if err := a.open(ctx); err != nil {
		return nil, errors.Join(err, a.Close())
	}
	return a, nil
}

func (a *App) open(ctx context.Context) error {
	if a.store == nil {
		if err := a.openLedger(ctx); err != nil {
			return err
		}
	}

	if a.cfg.RedisURL != "" {
		client, err := redis.Open(ctx, a.cfg.RedisURL)
		if err != nil {
			return err
		}
		a.redis = client
		a.closers = append(a.closers, client.Close)
		a.locker = redis.NewLocker(client, redis.WithLockTTL(a.cfg.LockTTL))
	}

	if a.publisher == nil && a.cfg.Report.Enabled() {
		s3, err := storage.New(a.cfg.Report)
		if err != nil {
			return err
		}
		a.publisher = s3
	}
	return nil
}

func (a *App) openLedger(ctx context.Context) error {
	if !a.cfg.Ledger.Enabled() {
		a.store = ledger.NewCSVStore(a.cfg.LedgerPath())
		return nil
	}

	pool, err := db.Connect(ctx, a.cfg.Ledger)
	if err != nil {
		return err
	}
	a.pool = pool
	a.closers = append(a.closers, func() error {
		pool.Close()
		return nil
	})

	if err := db.Migrate(ctx, pool, ledger.Migrations(), a.cfg.Ledger.MigrationsTable, a.logger); err != nil {
		return err
	}
	a.store = ledger.NewPostgresStore(pool)
	return nil
}

// Close releases the database pool and the Redis client.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Config returns the configuration the app was built with.
func (a *App) Config() config.Config {
	return a.cfg
}

// LedgerKey identifies the ledger location. Batches sharing a key must not overlap.
func (a *App) LedgerKey() string {
	if a.pool != nil {
		return "postgres:delivery_events"
	}
	if abs, err := filepath.Abs(a.cfg.LedgerPath()); err == nil {
		return abs
	}
	return a.cfg.LedgerPath()
}

// Checks returns readiness probes for every configured backend.
func (a *App) Checks() health.Checks {
	checks := health.Checks{
		"contacts":  health.PathCheck(a.cfg.ContactsCSV),
		"templates": health.PathCheck(a.cfg.TemplateRoot),
	}
	if a.pool != nil {
		checks["ledger"] = db.Healthcheck(a.pool)
	}
	if a.redis != nil {
		checks["redis"] = redis.Healthcheck(a.redis)
	}
	return checks
}
