package config

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/dmitrymomot/mailmerge/pkg/compose"
	"github.com/dmitrymomot/mailmerge/pkg/db"
	"github.com/dmitrymomot/mailmerge/pkg/logger"
	"github.com/dmitrymomot/mailmerge/pkg/mailer/resend"
	"github.com/dmitrymomot/mailmerge/pkg/mailer/smtp"
	"github.com/dmitrymomot/mailmerge/pkg/schedule"
	"github.com/dmitrymomot/mailmerge/pkg/storage"
)

// Transport names accepted in TRANSPORT.
const (
	TransportSMTP   = "smtp"
	TransportResend = "resend"
)

// File names kept under the log directory.
const (
	LedgerFileName = "sent.csv"
	DryRunDirName  = "dry-run"
)

// Config is the complete runtime configuration. It is built once per process
// and passed by value, so nothing mutates it after Load.
type Config struct {
	Transport string `env:"TRANSPORT" yaml:"transport"`

	SenderName string `env:"SENDER_NAME" yaml:"sender_name"`
	FromName   string `env:"FROM_NAME" yaml:"from_name"`
	FromEmail  string `env:"FROM_EMAIL" yaml:"from_email"`
	ReplyTo    string `env:"REPLY_TO" yaml:"reply_to"`

	TemplateRoot   string `env:"TEMPLATE_ROOT" yaml:"template_root"`
	AttachmentRoot string `env:"ATTACH_ROOT" yaml:"attachment_root"`
	ContactsCSV    string `env:"CONTACTS_CSV" yaml:"contacts_csv"`

	// LangAttachmentFallback attaches <AttachmentRoot>/<lang>/* to rows without attachments.
	LangAttachmentFallback bool `env:"ATTACH_LANG_DIR" yaml:"attach_lang_dir"`
	MarkdownHTML           bool `env:"MARKDOWN_HTML" yaml:"markdown_html"`

	// SleepSeconds is the pause after every successful send.
	SleepSeconds float64 `env:"SLEEP_SECONDS" yaml:"sleep_seconds"`
	Timezone     string  `env:"TZ_NAME" yaml:"timezone"`

	// LedgerFile defaults to <log dir>/sent.csv. Ignored when Ledger.ConnectionString is set.
	LedgerFile    string `env:"LEDGER_FILE" yaml:"ledger_file"`
	RecordInvalid bool   `env:"LEDGER_RECORD_INVALID" yaml:"record_invalid"`

	// DashboardFile defaults to <log dir>/dashboard.html.
	DashboardFile string        `env:"DASHBOARD_FILE" yaml:"dashboard_file"`
	ReportLinkTTL time.Duration `env:"REPORT_LINK_TTL" yaml:"report_link_ttl"`

	RedisURL string        `env:"REDIS_URL" yaml:"redis_url"`
	LockTTL  time.Duration `env:"LOCK_TTL" yaml:"lock_ttl"`

	SMTP   smtp.Config    `yaml:"smtp"`
	Resend resend.Config  `yaml:"resend"`
	Ledger db.Config      `yaml:"ledger"`
	Report storage.Config `yaml:"report"`
	Log    logger.Config  `yaml:"log"`
}

// Default returns the values used when neither the config file nor the
// environment sets a key.
func Default() Config {
	return Config{
		Transport:              TransportSMTP,
		SenderName:             "Bot",
		TemplateRoot:           "templates",
		AttachmentRoot:         "attachments",
		ContactsCSV:            "contacts.csv",
		LangAttachmentFallback: true,
		SleepSeconds:           8,
		Timezone:               schedule.DefaultTimezone,
		ReportLinkTTL:          7 * 24 * time.Hour,
		SMTP: smtp.Config{
			Host:    "smtp.gmail.com",
			Port:    465,
			Timeout: 30 * time.Second,
		},
		Ledger: db.DefaultConfig(),
		Log:    logger.DefaultConfig(),
	}
}

// Validate reports settings that can never work, independent of credentials.
func (c Config) Validate() error {
	if !slices.Contains([]string{TransportSMTP, TransportResend}, c.Transport) {
		return ErrUnknownTransport
	}
	if c.SleepSeconds < 0 {
		return ErrNegativeDelay
	}
	if c.TemplateRoot == "" || c.ContactsCSV == "" {
		return ErrMissingPath
	}
	if _, err := schedule.LoadLocation(c.Timezone); err != nil {
		return err
	}
	return nil
}

// Delay is the inter-send pause.
func (c Config) Delay() time.Duration {
	return time.Duration(c.SleepSeconds * float64(time.Second))
}

// SenderEmail is the authenticated sender address for the selected transport.
func (c Config) SenderEmail() string {
	if c.Transport == TransportResend && c.Resend.SenderEmail != "" {
		return c.Resend.SenderEmail
	}
	return c.SMTP.Username
}

// MissingCredentials names the unset keys the selected transport needs.
func (c Config) MissingCredentials() []string {
	var missing []string
	if c.SenderEmail() == "" {
		missing = append(missing, "SENDER_EMAIL")
	}
	switch c.Transport {
	case TransportResend:
		if !c.Resend.HasCredentials() {
			missing = append(missing, "RESEND_API_KEY")
		}
	default:
		if c.SMTP.Password == "" && !c.SMTP.OAuth.Enabled() {
			missing = append(missing, "APP_PASSWORD")
		}
	}
	return missing
}

// HasCredentials reports whether the selected transport can authenticate.
func (c Config) HasCredentials() bool {
	return len(c.MissingCredentials()) == 0
}

// LedgerPath resolves the CSV ledger location.
func (c Config) LedgerPath() string {
	if c.LedgerFile != "" {
		return c.LedgerFile
	}
	return filepath.Join(c.Log.Dir, LedgerFileName)
}

// DashboardPath resolves the HTML dashboard location.
func (c Config) DashboardPath() string {
	if c.DashboardFile != "" {
		return c.DashboardFile
	}
	return filepath.Join(c.Log.Dir, "dashboard.html")
}

// DryRunDir is the default preview directory.
func (c Config) DryRunDir() string {
	return filepath.Join(c.Log.Dir, DryRunDirName)
}

// Compose returns the composer settings.
func (c Config) Compose() compose.Config {
	return compose.Config{
		TemplateRoot:           c.TemplateRoot,
		AttachmentRoot:         c.AttachmentRoot,
		SenderName:             c.SenderName,
		SenderEmail:            c.SenderEmail(),
		FromName:               c.FromName,
		FromEmail:              c.FromEmail,
		ReplyTo:                c.ReplyTo,
		LangAttachmentFallback: c.LangAttachmentFallback,
		MarkdownHTML:           c.MarkdownHTML,
	}
}
