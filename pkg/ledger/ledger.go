package ledger

import (
	"context"
	"time"

	"github.com/dmitrymomot/mailmerge/pkg/contacts"
)

// Status is the outcome of one delivery attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	// StatusInvalid marks a row whose address was malformed. It is only written
	// when invalid recipients are recorded.
	StatusInvalid Status = "invalid"
)

// Columns is the fixed column order of the tabular ledger log.
var Columns = []string{"time", "email", "name", "lang", "subject", "status", "error"}

// Record is one delivery attempt event.
type Record struct {
	Time    time.Time
	RunID   string // batch identifier; persisted by stores that have a column for it
	Email   string
	Name    string
	Lang    string
	Subject string
	Status  Status
	Error   string
}

// Store is an append-only delivery event log.
type Store interface {
	// Load replays the full log into a fresh Index. A missing log is empty.
	Load(ctx context.Context) (*Index, error)

	// Append adds one event to the log.
	Append(ctx context.Context, rec Record) error
}

// Index maps a normalized email to its most recent Record.
type Index struct {
	latest map[string]Record
	events int
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{latest: make(map[string]Record)}
}

// Apply replays one event. Later events replace earlier ones for the same address.
func (i *Index) Apply(rec Record) {
	i.latest[contacts.NormalizeEmail(rec.Email)] = rec
	i.events++
}

// Latest returns the most recent event for an address.
func (i *Index) Latest(email string) (Record, bool) {
	rec, ok := i.latest[contacts.NormalizeEmail(email)]
	return rec, ok
}

// Delivered reports whether the latest event for the address is a success.
func (i *Index) Delivered(email string) bool {
	rec, ok := i.Latest(email)
	return ok && rec.Status == StatusSuccess
}

// Len returns the number of distinct addresses in the index.
func (i *Index) Len() int {
	return len(i.latest)
}

// Events returns the number of events replayed into the index.
func (i *Index) Events() int {
	return i.events
}
