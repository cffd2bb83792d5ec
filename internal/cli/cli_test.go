package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// fixture creates templates and contacts and points the log directory at a
// temporary location through the environment.
func fixture(t *testing.T) (contacts, templates, logs string) {
	t.Helper()
	dir := t.TempDir()

	templates = filepath.Join(dir, "templates")
	write(t, filepath.Join(templates, "en", "subject.txt"), "Hello $name")
	write(t, filepath.Join(templates, "en", "body.txt"), "Hi $name")

	contacts = filepath.Join(dir, "contacts.csv")
	write(t, contacts, "email,name\nann@example.com,Ann\n")

	logs = filepath.Join(dir, "logs")
	t.Setenv("LOG_DIR", logs)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SENDER_EMAIL", "")
	t.Setenv("APP_PASSWORD", "")
	return contacts, templates, logs
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSend_DryRunNow(t *testing.T) {
	contacts, templates, logs := fixture(t)

	out, err := execute(t, "send", "--now", "--dry-run", "--contacts", contacts, "--templates", templates)
	require.NoError(t, err)
	assert.Contains(t, out, "sent 1, skipped 0, failed 0, invalid 0")

	assert.FileExists(t, filepath.Join(logs, "dry-run", "ann", "001.subject.txt"))
	assert.FileExists(t, filepath.Join(logs, "dashboard.html"))
	assert.NoFileExists(t, filepath.Join(logs, "sent.csv"))
}

func TestSend_MissingCredentials(t *testing.T) {
	contacts, templates, _ := fixture(t)

	_, err := execute(t, "send", "--now", "--contacts", contacts, "--templates", templates)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing transport credentials")
}

func TestSend_TriggerFlags(t *testing.T) {
	contacts, templates, _ := fixture(t)

	_, err := execute(t, "send", "--contacts", contacts, "--templates", templates)
	require.Error(t, err, "a trigger is required")

	_, err = execute(t, "send", "--now", "--daily", "19:00", "--contacts", contacts, "--templates", templates)
	require.Error(t, err, "triggers are mutually exclusive")
}

func TestSend_MisfiredAt(t *testing.T) {
	contacts, templates, _ := fixture(t)

	_, err := execute(t, "send", "--at", "2001-01-01 10:00", "--dry-run",
		"--contacts", contacts, "--templates", templates)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "late")
}

func TestReport(t *testing.T) {
	contacts, templates, logs := fixture(t)

	out, err := execute(t, "report", "--contacts", contacts, "--templates", templates)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(logs, "dashboard.html"))
	assert.FileExists(t, filepath.Join(logs, "dashboard.html"))
}
