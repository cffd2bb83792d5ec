package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-mbox"

	"github.com/dmitrymomot/mailmerge/pkg/mailer"
	"github.com/dmitrymomot/mailmerge/pkg/mailer/smtp"
)

// MboxFileName is the mailbox the previewer appends every message to.
const MboxFileName = "preview.mbox"

const maxDirName = 120

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// Previewer is a mailer.Sender that writes messages to disk instead of
// transmitting them. Each message produces, under a directory named after the
// sanitized local part of the primary address:
//
//	NNN.subject.txt
//	NNN.body.txt
//	NNN.body.html (only when an HTML alternative exists)
//
// where NNN is the 1-based preview counter. The full MIME message is also
// appended to preview.mbox in the output directory.
type Previewer struct {
	dir string
	now func() time.Time

	mu sync.Mutex
	n  int
}

// NewPreviewer returns a previewer writing under dir.
func NewPreviewer(dir string) *Previewer {
	return &Previewer{dir: dir, now: time.Now}
}

// Dir returns the output directory.
func (p *Previewer) Dir() string {
	return p.dir
}

// Count returns how many messages were previewed.
func (p *Previewer) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}

// Send implements mailer.Sender.
func (p *Previewer) Send(ctx context.Context, email *mailer.Email) error {
	if err := mailer.Validate(email); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	dest := filepath.Join(p.dir, SanitizeName(localPart(email.To[0])))
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return errors.Join(ErrPreviewFailed, err)
	}

	prefix := fmt.Sprintf("%03d", p.n+1)
	files := []struct {
		name, data string
	}{
		{prefix + ".subject.txt", email.Subject + "\n"},
		{prefix + ".body.txt", email.Text},
	}
	if email.HTML != "" {
		files = append(files, struct{ name, data string }{prefix + ".body.html", email.HTML})
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dest, f.name), []byte(f.data), 0o644); err != nil {
			return errors.Join(ErrPreviewFailed, err)
		}
	}

	if err := p.appendMbox(email); err != nil {
		return errors.Join(ErrPreviewFailed, err)
	}

	p.n++
	return nil
}

func (p *Previewer) appendMbox(email *mailer.Email) error {
	msg, err := smtp.NewMessage(email)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(p.dir, MboxFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	mw := mbox.NewWriter(f)
	from := email.EnvelopeFrom
	if from == "" {
		from = "MAILER-DAEMON"
	}
	w, err := mw.CreateMessage(from, p.now())
	if err != nil {
		_ = f.Close()
		return err
	}
	if _, err := msg.WriteTo(w); err != nil {
		_ = f.Close()
		return err
	}

	return errors.Join(mw.Close(), f.Close())
}

// SanitizeName replaces every run of characters outside [A-Za-z0-9_.-] with
// an underscore and truncates the result to 120 bytes.
func SanitizeName(name string) string {
	s := unsafeChars.ReplaceAllString(name, "_")
	if len(s) > maxDirName {
		s = s[:maxDirName]
	}
	return s
}

func localPart(addr string) string {
	local, _, _ := strings.Cut(addr, "@")
	return local
}
