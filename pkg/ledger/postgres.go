package ledger

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the goose migrations for the delivery_events table,
// rooted at the migration files.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

const (
	selectEvents = `SELECT created_at, email, name, lang, subject, status, error
FROM delivery_events ORDER BY id`

	insertEvent = `INSERT INTO delivery_events
(run_id, created_at, email, name, lang, subject, status, error)
VALUES (NULLIF($1::text, '')::uuid, $2, $3, $4, $5, $6, $7, $8)`
)

// PostgresStore keeps the ledger in the delivery_events table.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore returns a store backed by pool.
// The schema must already be migrated, see Migrations.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

// Load replays all events in insertion order.
func (s *PostgresStore) Load(ctx context.Context) (*Index, error) {
	rows, err := s.pool.Query(ctx, selectEvents)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	defer rows.Close()

	idx := NewIndex()
	for rows.Next() {
		var (
			rec    Record
			status string
		)
		if err := rows.Scan(&rec.Time, &rec.Email, &rec.Name, &rec.Lang, &rec.Subject, &status, &rec.Error); err != nil {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
		rec.Status = Status(status)
		idx.Apply(rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	return idx, nil
}

// Append inserts one event.
func (s *PostgresStore) Append(ctx context.Context, rec Record) error {
	if rec.Time.IsZero() {
		rec.Time = s.now()
	}

	_, err := s.pool.Exec(ctx, insertEvent,
		rec.RunID,
		rec.Time,
		strings.TrimSpace(rec.Email),
		rec.Name,
		rec.Lang,
		rec.Subject,
		string(rec.Status),
		rec.Error,
	)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// Truncate removes every event. Used by tests and by operators resetting a campaign.
func (s *PostgresStore) Truncate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "TRUNCATE delivery_events"); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
