package db

import "errors"

var (
	ErrNoConnectionString       = errors.New("db: ledger DSN is empty")
	ErrFailedToParseDBConfig    = errors.New("db: failed to parse ledger DSN")
	ErrFailedToOpenDBConnection = errors.New("db: failed to connect to ledger database")
	ErrHealthcheckFailed        = errors.New("db: healthcheck failed")
	ErrSetDialect               = errors.New("db migrator: failed to set dialect")
	ErrApplyMigrations          = errors.New("db migrator: failed to apply ledger migrations")
)
