package report_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailmerge/pkg/contacts"
	"github.com/dmitrymomot/mailmerge/pkg/ledger"
	"github.com/dmitrymomot/mailmerge/pkg/report"
	"github.com/dmitrymomot/mailmerge/pkg/storage"
)

func fixture() ([]contacts.Recipient, *ledger.Index) {
	rows := []contacts.Recipient{
		contacts.NewRecipient(map[string]string{"email": "a@x.com", "name": "Ana", "lang": "fr"}),
		contacts.NewRecipient(map[string]string{"email": " b@x.com ", "name": "<b>Bo</b>", "lang": "en"}),
		contacts.NewRecipient(map[string]string{"email": "c@x.com", "name": "Cy"}),
	}

	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	idx := ledger.NewIndex()
	idx.Apply(ledger.Record{Time: at, Email: "a@x.com", Subject: "Bonjour Ana", Status: ledger.StatusSuccess})
	idx.Apply(ledger.Record{Time: at, Email: "b@x.com", Subject: "Hello", Status: ledger.StatusSuccess})
	idx.Apply(ledger.Record{Time: at.Add(time.Hour), Email: "b@x.com", Subject: "Hello", Status: ledger.StatusFailed})
	return rows, idx
}

func TestBuild(t *testing.T) {
	t.Parallel()

	d := report.Build(fixture())

	assert.Equal(t, report.Summary{Total: 3, Sent: 1, Unsent: 2, Failed: 1}, d.Summary)
	require.Len(t, d.Rows, 3)

	assert.True(t, d.Rows[0].Delivered)
	assert.Equal(t, "Bonjour Ana", d.Rows[0].Subject)
	assert.Equal(t, "b@x.com", d.Rows[1].Email)
	assert.False(t, d.Rows[1].Delivered)
	assert.Equal(t, ledger.StatusFailed, d.Rows[1].Status)
	assert.Equal(t, 10, d.Rows[1].LastTime.Hour())
	assert.True(t, d.Rows[2].LastTime.IsZero())
}

func TestRender(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, report.Build(fixture())))
	html := buf.String()

	assert.Contains(t, html, "<title>Mailer Dashboard</title>")
	assert.Contains(t, html, `Total: <span class="badge">3</span>`)
	assert.Contains(t, html, `Sent: <span class="badge">1</span>`)
	assert.Contains(t, html, "&lt;b&gt;Bo&lt;/b&gt;")
	assert.NotContains(t, html, "<b>Bo</b>")
	assert.Contains(t, html, `<input type="checkbox" checked disabled>`)
	assert.Contains(t, html, "2024-05-01T09:30:00")
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", report.FileName)
	require.NoError(t, report.WriteFile(path, report.Build(fixture())))
	require.NoError(t, report.WriteFile(path, report.Build(nil, nil)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `Total: <span class="badge">0</span>`)
	assert.NoFileExists(t, path+".tmp")
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*storage.FileInfo, error) {
	data, _ := io.ReadAll(body)
	args := m.Called(ctx, key, string(data), size, contentType)
	info, _ := args.Get(0).(*storage.FileInfo)
	return info, args.Error(1)
}

func (m *mockPublisher) URL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func TestPublish(t *testing.T) {
	t.Parallel()

	t.Run("uploads rendered page", func(t *testing.T) {
		t.Parallel()

		pub := &mockPublisher{}
		pub.On("Put", mock.Anything, "reports/d.html",
			mock.MatchedBy(func(body string) bool { return bytes.Contains([]byte(body), []byte("Mailer Dashboard")) }),
			mock.AnythingOfType("int64"), "text/html; charset=utf-8").
			Return(&storage.FileInfo{Key: "reports/d.html"}, nil).Once()
		pub.On("URL", mock.Anything, "reports/d.html", time.Hour).Return("https://cdn/reports/d.html", nil).Once()

		link, err := report.Publish(context.Background(), pub, "reports/d.html", report.Build(fixture()), time.Hour)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/reports/d.html", link)
		pub.AssertExpectations(t)
	})

	t.Run("upload failure", func(t *testing.T) {
		t.Parallel()

		pub := &mockPublisher{}
		pub.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, storage.ErrAccessDenied).Once()

		_, err := report.Publish(context.Background(), pub, "d.html", report.Build(fixture()), time.Hour)
		require.ErrorIs(t, err, report.ErrPublishFailed)
		require.True(t, errors.Is(err, storage.ErrAccessDenied))
	})
}
