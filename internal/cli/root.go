package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mailmerge/internal/app"
	"github.com/dmitrymomot/mailmerge/internal/config"
	"github.com/dmitrymomot/mailmerge/pkg/logger"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configFile string
	logLevel   string
	logFormat  string
	contacts   string
	templates  string
	tz         string
}

// Execute runs the command line until it finishes or the process receives
// SIGINT or SIGTERM.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the mailmerge command tree.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "mailmerge",
		Short: "Multilingual scheduled mail merge",
		Long: `mailmerge sends one personalized message per row of a contacts CSV,
using language-specific templates, and records every attempt in a delivery
ledger so interrupted batches resume without sending twice.

Example:
  mailmerge send --now --dry-run            # write previews to logs/dry-run
  mailmerge send --now --limit 20           # send at most 20 messages
  mailmerge send --at "2025-09-13 19:00"    # one-shot in Africa/Tunis time
  mailmerge send --daily 19:00 --http-addr :8080
  mailmerge report                          # regenerate logs/dashboard.html`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.configFile, "config", "c", "", "YAML config file, overridden by the environment")
	flags.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&o.logFormat, "log-format", "", "stdout log format: json or text")
	flags.StringVar(&o.contacts, "contacts", "", "contacts CSV (default $CONTACTS_CSV or contacts.csv)")
	flags.StringVar(&o.templates, "templates", "", "template root (default $TEMPLATE_ROOT or templates)")
	flags.StringVar(&o.tz, "tz", "", "IANA timezone for schedules (default $TZ_NAME or Africa/Tunis)")

	cmd.AddCommand(newSendCmd(o))
	cmd.AddCommand(newReportCmd(o))

	return cmd
}

// env is what every command needs: the merged configuration, the logger
// and a function releasing both the app and the log file.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	app    *app.App
	close  func()
}

func (o *rootOptions) setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}

	var overlay config.Config
	overlay.ContactsCSV = o.contacts
	overlay.TemplateRoot = o.templates
	overlay.Timezone = o.tz
	overlay.Log.Level = o.logLevel
	overlay.Log.Format = o.logFormat
	if cfg, err = cfg.Override(overlay); err != nil {
		return nil, err
	}

	log, closeLog := logger.NewFromConfig(cfg.Log, logger.DefaultExtractors()...)

	a, err := app.New(ctx, cfg, app.WithLogger(log))
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	return &env{
		cfg:    cfg,
		logger: log,
		app:    a,
		close: func() {
			if err := a.Close(); err != nil {
				log.Warn("closing backends", slog.Any("error", err))
			}
			_ = closeLog()
		},
	}, nil
}
