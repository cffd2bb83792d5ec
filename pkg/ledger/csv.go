package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Accepted timestamp layouts on read. Logs written by older tools carry
// local ISO timestamps without a zone.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// CSVStore keeps the ledger in a CSV file.
// The file is opened fresh for every Load and Append.
type CSVStore struct {
	path string
	now  func() time.Time
}

// CSVOption configures a CSVStore.
type CSVOption func(*CSVStore)

// WithClock overrides the clock used for records without a timestamp.
func WithClock(now func() time.Time) CSVOption {
	return func(s *CSVStore) {
		s.now = now
	}
}

// NewCSVStore returns a store backed by the CSV file at path.
func NewCSVStore(path string, opts ...CSVOption) *CSVStore {
	s := &CSVStore{path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the ledger file location.
func (s *CSVStore) Path() string {
	return s.path
}

// Load replays the CSV log. A missing file yields an empty index.
func (s *CSVStore) Load(ctx context.Context) (*Index, error) {
	idx := NewIndex()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return idx, nil
	}
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return idx, nil
	}
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	if _, ok := cols["email"]; !ok {
		return nil, fmt.Errorf("%w: %s: no email column", ErrMalformedLog, s.path)
	}

	get := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}

		email := strings.TrimSpace(get(row, "email"))
		if email == "" {
			continue
		}

		idx.Apply(Record{
			Time:    parseTime(get(row, "time")),
			Email:   email,
			Name:    get(row, "name"),
			Lang:    get(row, "lang"),
			Subject: get(row, "subject"),
			Status:  Status(strings.TrimSpace(get(row, "status"))),
			Error:   get(row, "error"),
		})
	}

	return idx, nil
}

// Append writes one event, creating the file and its header on first use.
func (s *CSVStore) Append(_ context.Context, rec Record) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Join(ErrStoreUnavailable, err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return errors.Join(ErrStoreUnavailable, err)
	}

	if rec.Time.IsZero() {
		rec.Time = s.now()
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		_ = w.Write(Columns)
	}
	_ = w.Write([]string{
		rec.Time.Format(time.RFC3339),
		strings.TrimSpace(rec.Email),
		rec.Name,
		rec.Lang,
		rec.Subject,
		string(rec.Status),
		rec.Error,
	})
	w.Flush()

	if err := errors.Join(w.Error(), f.Close()); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func parseTime(v string) time.Time {
	v = strings.TrimSpace(v)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
