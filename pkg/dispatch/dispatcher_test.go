package dispatch_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailmerge/pkg/compose"
	"github.com/dmitrymomot/mailmerge/pkg/contacts"
	"github.com/dmitrymomot/mailmerge/pkg/dispatch"
	"github.com/dmitrymomot/mailmerge/pkg/ledger"
	"github.com/dmitrymomot/mailmerge/pkg/mailer"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, email *mailer.Email) error {
	return m.Called(ctx, email).Error(0)
}

// memStore is an in-memory ledger.Store.
type memStore struct {
	mu        sync.Mutex
	records   []ledger.Record
	appendErr error
}

func (s *memStore) Load(context.Context) (*ledger.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := ledger.NewIndex()
	for _, r := range s.records {
		idx.Apply(r)
	}
	return idx, nil
}

func (s *memStore) Append(_ context.Context, rec ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.appendErr != nil {
		return s.appendErr
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *memStore) events() []ledger.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ledger.Record(nil), s.records...)
}

type composerFunc func(ctx context.Context, r contacts.Recipient) (*mailer.Email, error)

func (f composerFunc) Compose(ctx context.Context, r contacts.Recipient) (*mailer.Email, error) {
	return f(ctx, r)
}

func greeter() dispatch.Composer {
	return composerFunc(func(_ context.Context, r contacts.Recipient) (*mailer.Email, error) {
		if !r.Valid() {
			return nil, compose.ErrInvalidRecipient
		}
		return &mailer.Email{
			To:      []string{r.Email()},
			Subject: "Hello " + r.Name(),
			Text:    "Hi " + r.Name(),
		}, nil
	})
}

func recipients(emails ...string) []contacts.Recipient {
	out := make([]contacts.Recipient, 0, len(emails))
	for _, e := range emails {
		name, _, _ := strings.Cut(e, "@")
		out = append(out, contacts.NewRecipient(map[string]string{"email": e, "name": name, "lang": "fr"}))
	}
	return out
}

func to(addr string) any {
	return mock.MatchedBy(func(e *mailer.Email) bool { return e.To[0] == addr })
}

func load(t *testing.T, s ledger.Store) *ledger.Index {
	t.Helper()
	idx, err := s.Load(context.Background())
	require.NoError(t, err)
	return idx
}

func TestRun_SkipsDelivered(t *testing.T) {
	t.Parallel()

	store := &memStore{records: []ledger.Record{{Email: "a@x.com", Status: ledger.StatusSuccess}}}
	sender := &mockSender{}
	sender.On("Send", mock.Anything, to("b@x.com")).Return(nil).Once()

	d := dispatch.New(greeter(), sender, dispatch.WithRecorder(store))
	out, err := d.Run(context.Background(), recipients("a@x.com", "b@x.com"), load(t, store), dispatch.RunOptions{})
	require.NoError(t, err)

	sender.AssertExpectations(t)
	sender.AssertNumberOfCalls(t, "Send", 1)
	assert.Equal(t, 1, out.Skipped)
	assert.Equal(t, 1, out.Sent)
	assert.Equal(t, 1, out.Attempted)

	events := store.events()
	require.Len(t, events, 2)
	assert.Equal(t, "b@x.com", events[1].Email)
	assert.Equal(t, ledger.StatusSuccess, events[1].Status)
	assert.Equal(t, "Hello b", events[1].Subject)
	assert.Equal(t, "fr", events[1].Lang)
	assert.Equal(t, out.RunID, events[1].RunID)
}

func TestRun_Resend(t *testing.T) {
	t.Parallel()

	store := &memStore{records: []ledger.Record{{Email: "a@x.com", Status: ledger.StatusSuccess}}}
	sender := &mockSender{}
	sender.On("Send", mock.Anything, to("a@x.com")).Return(nil).Once()

	d := dispatch.New(greeter(), sender, dispatch.WithRecorder(store))
	out, err := d.Run(context.Background(), recipients("a@x.com"), load(t, store), dispatch.RunOptions{Resend: true})
	require.NoError(t, err)

	sender.AssertExpectations(t)
	assert.Equal(t, 1, out.Sent)
	assert.Len(t, store.events(), 2)
}

func TestRun_IdempotentAcrossRuns(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(nil)

	list := recipients("a@x.com", "b@x.com", "c@x.com")
	d := dispatch.New(greeter(), sender, dispatch.WithRecorder(store))

	first, err := d.Run(context.Background(), list, load(t, store), dispatch.RunOptions{Limit: 2})
	require.NoError(t, err)
	second, err := d.Run(context.Background(), list, load(t, store), dispatch.RunOptions{})
	require.NoError(t, err)
	third, err := d.Run(context.Background(), list, load(t, store), dispatch.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, first.Sent)
	assert.Equal(t, 1, second.Sent)
	assert.Equal(t, 2, second.Skipped)
	assert.Equal(t, 0, third.Sent)
	assert.Equal(t, 3, third.Skipped)

	perAddress := map[string]int{}
	for _, call := range sender.Calls {
		perAddress[call.Arguments.Get(1).(*mailer.Email).To[0]]++
	}
	assert.Equal(t, map[string]int{"a@x.com": 1, "b@x.com": 1, "c@x.com": 1}, perAddress)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRun_RetriesWhenLatestEventFailed(t *testing.T) {
	t.Parallel()

	store := &memStore{records: []ledger.Record{
		{Email: "a@x.com", Status: ledger.StatusSuccess},
		{Email: "a@x.com", Status: ledger.StatusFailed, Error: "mailbox full"},
	}}
	idx := load(t, store)
	latest, ok := idx.Latest("a@x.com")
	require.True(t, ok)
	require.Equal(t, ledger.StatusFailed, latest.Status)

	sender := &mockSender{}
	sender.On("Send", mock.Anything, to("a@x.com")).Return(nil).Once()

	out, err := dispatch.New(greeter(), sender, dispatch.WithRecorder(store)).
		Run(context.Background(), recipients("a@x.com"), idx, dispatch.RunOptions{})
	require.NoError(t, err)

	sender.AssertExpectations(t)
	assert.Equal(t, 1, out.Sent)
	assert.True(t, load(t, store).Delivered("a@x.com"))
}

func TestRun_LimitOne(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	sender := &mockSender{}
	sender.On("Send", mock.Anything, to("a@x.com")).Return(nil).Once()

	d := dispatch.New(greeter(), sender, dispatch.WithRecorder(store))
	out, err := d.Run(context.Background(), recipients("a@x.com", "b@x.com"), load(t, store), dispatch.RunOptions{Limit: 1})
	require.NoError(t, err)

	sender.AssertExpectations(t)
	assert.Equal(t, 1, out.Sent)

	events := store.events()
	require.Len(t, events, 1)
	assert.Equal(t, "a@x.com", events[0].Email)
	assert.Equal(t, ledger.StatusSuccess, events[0].Status)
	assert.False(t, load(t, store).Delivered("b@x.com"))
}

func TestRun_InvalidRecipient(t *testing.T) {
	t.Parallel()

	t.Run("logged only", func(t *testing.T) {
		t.Parallel()

		store := &memStore{}
		sender := &mockSender{}
		sender.On("Send", mock.Anything, to("a@x.com")).Return(nil).Once()

		out, err := dispatch.New(greeter(), sender, dispatch.WithRecorder(store)).
			Run(context.Background(), recipients("bad", "", "a@x.com"), load(t, store), dispatch.RunOptions{})
		require.NoError(t, err)

		sender.AssertExpectations(t)
		assert.Equal(t, 2, out.Invalid)
		assert.Equal(t, 1, out.Sent)
		assert.Equal(t, 1, out.Attempted)

		events := store.events()
		require.Len(t, events, 1)
		assert.Equal(t, "a@x.com", events[0].Email)
	})

	t.Run("recorded", func(t *testing.T) {
		t.Parallel()

		store := &memStore{}
		sender := &mockSender{}

		out, err := dispatch.New(greeter(), sender, dispatch.WithRecorder(store), dispatch.WithRecordInvalid(true)).
			Run(context.Background(), recipients("bad"), load(t, store), dispatch.RunOptions{})
		require.NoError(t, err)

		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		assert.Equal(t, 1, out.Invalid)

		events := store.events()
		require.Len(t, events, 1)
		assert.Equal(t, ledger.StatusInvalid, events[0].Status)
		assert.Equal(t, "bad", events[0].Email)
	})
}

func TestRun_ComposeFailure(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	sender := &mockSender{}
	sender.On("Send", mock.Anything, to("b@x.com")).Return(nil).Once()

	composer := composerFunc(func(ctx context.Context, r contacts.Recipient) (*mailer.Email, error) {
		if r.Email() == "a@x.com" {
			return nil, fmt.Errorf("%w: subject template not found: templates/de/subject.txt", compose.ErrTemplateMissing)
		}
		return greeter().Compose(ctx, r)
	})

	out, err := dispatch.New(composer, sender, dispatch.WithRecorder(store)).
		Run(context.Background(), recipients("a@x.com", "b@x.com"), load(t, store), dispatch.RunOptions{})
	require.NoError(t, err)

	sender.AssertExpectations(t)
	assert.Equal(t, 1, out.Failed)
	assert.Equal(t, 1, out.Sent)
	assert.Equal(t, 2, out.Attempted)

	events := store.events()
	require.Len(t, events, 2)
	assert.Equal(t, ledger.StatusFailed, events[0].Status)
	assert.Empty(t, events[0].Subject)
	assert.Contains(t, events[0].Error, "templates/de/subject.txt")
	assert.Equal(t, ledger.StatusSuccess, events[1].Status)
}

func TestRun_TransportFailure(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	sender := &mockSender{}
	sender.On("Send", mock.Anything, to("a@x.com")).Return(errors.Join(mailer.ErrSendFailed, errors.New("550 rejected"))).Once()
	sender.On("Send", mock.Anything, to("b@x.com")).Return(nil).Once()

	out, err := dispatch.New(greeter(), sender, dispatch.WithRecorder(store)).
		Run(context.Background(), recipients("a@x.com", "b@x.com"), load(t, store), dispatch.RunOptions{})
	require.NoError(t, err)

	sender.AssertExpectations(t)
	assert.Equal(t, 1, out.Failed)
	assert.Equal(t, 1, out.Sent)

	events := store.events()
	require.Len(t, events, 2)
	assert.Equal(t, ledger.StatusFailed, events[0].Status)
	assert.Equal(t, "Hello a", events[0].Subject)
	assert.Contains(t, events[0].Error, "550 rejected")
	assert.False(t, load(t, store).Delivered("a@x.com"))
}

func TestRun_LedgerFailureIsFatal(t *testing.T) {
	t.Parallel()

	store := &memStore{appendErr: errors.New("disk full")}
	sender := &mockSender{}
	sender.On("Send", mock.Anything, to("a@x.com")).Return(nil).Once()

	out, err := dispatch.New(greeter(), sender, dispatch.WithRecorder(store)).
		Run(context.Background(), recipients("a@x.com", "b@x.com"), ledger.NewIndex(), dispatch.RunOptions{})
	require.ErrorIs(t, err, dispatch.ErrSourceUnavailable)

	sender.AssertExpectations(t)
	assert.Equal(t, 1, out.Sent)
}

func TestRun_NoRecorder(t *testing.T) {
	t.Parallel()

	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(nil)

	out, err := dispatch.New(greeter(), sender).
		Run(context.Background(), recipients("a@x.com", "b@x.com"), nil, dispatch.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Sent)
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	t.Run("before first recipient", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		sender := &mockSender{}
		out, err := dispatch.New(greeter(), sender).
			Run(ctx, recipients("a@x.com"), ledger.NewIndex(), dispatch.RunOptions{})
		require.ErrorIs(t, err, context.Canceled)

		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		assert.Equal(t, 0, out.Attempted)
	})

	t.Run("during delay", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store := &memStore{}
		sender := &mockSender{}
		sender.On("Send", mock.Anything, to("a@x.com")).Run(func(mock.Arguments) { cancel() }).Return(nil).Once()

		start := time.Now()
		out, err := dispatch.New(greeter(), sender, dispatch.WithRecorder(store), dispatch.WithDelay(time.Hour)).
			Run(ctx, recipients("a@x.com", "b@x.com"), ledger.NewIndex(), dispatch.RunOptions{})
		require.ErrorIs(t, err, context.Canceled)

		assert.Less(t, time.Since(start), time.Minute)
		assert.Equal(t, 1, out.Sent)
		sender.AssertExpectations(t)
		require.Len(t, store.events(), 1)
	})
}

func TestRun_CancelledDuringSendIsRecorded(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := ledger.NewCSVStore(filepath.Join(t.TempDir(), "sent.csv"))
	sender := &mockSender{}
	sender.On("Send", mock.Anything, to("a@x.com")).Run(func(mock.Arguments) { cancel() }).Return(nil).Once()

	out, err := dispatch.New(greeter(), sender, dispatch.WithRecorder(store)).
		Run(ctx, recipients("a@x.com", "b@x.com"), ledger.NewIndex(), dispatch.RunOptions{})
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, dispatch.ErrSourceUnavailable)

	sender.AssertExpectations(t)
	assert.Equal(t, 1, out.Sent)

	idx := load(t, store)
	assert.Equal(t, 1, idx.Len())
	assert.True(t, idx.Delivered("a@x.com"))
	assert.False(t, idx.Delivered("b@x.com"))
}
