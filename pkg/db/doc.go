// Package db connects the Postgres-backed delivery ledger.
//
// It wraps [github.com/jackc/pgx/v5/pgxpool] with a startup retry loop, a
// readiness probe and a goose migration runner that reads SQL files from any
// [io/fs.FS], typically one embedded by the package owning the schema.
//
// # Usage
//
//	cfg := db.DefaultConfig()
//	cfg.ConnectionString = os.Getenv("LEDGER_DSN")
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := db.Migrate(ctx, pool, ledger.Migrations(), cfg.MigrationsTable, logger); err != nil {
//		return err
//	}
//
// # Errors
//
//   - [ErrFailedToParseDBConfig] - invalid connection string
//   - [ErrFailedToOpenDBConnection] - connection failed after all retries
//   - [ErrHealthcheckFailed] - ping failed
//   - [ErrSetDialect], [ErrApplyMigrations] - migration failures
//
// Errors are wrapped with [errors.Join] so the driver error is preserved.
package db
