package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrymomot/mailmerge/pkg/logger"
)

// goose keeps its dialect, table name and base FS in package state.
var migrateMu sync.Mutex

// Migrate brings the ledger schema up to date with the goose migrations at
// the root of migrations, recording applied versions in table.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, table string, log *slog.Logger) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	if log == nil {
		log = logger.NewNope()
	}

	// Borrows the pool's connections; closing it would close the pool.
	sqlDB := stdlib.OpenDBFromPool(pool)

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{log.With(slog.String("component", "migrate"))})
	goose.SetTableName(table)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}

	if version, err := goose.GetDBVersionContext(ctx, sqlDB); err == nil {
		log.InfoContext(ctx, "ledger schema ready", slog.Int64("version", version))
	}
	return nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (g gooseLogger) Printf(format string, args ...any) {
	g.log.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Fatalf is followed by an error return from goose; exiting here would skip
// the caller's cleanup.
func (g gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
