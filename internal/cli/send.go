package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/mailmerge/internal/app"
	"github.com/dmitrymomot/mailmerge/internal/web"
	"github.com/dmitrymomot/mailmerge/pkg/schedule"
)

type sendOptions struct {
	now      bool
	at       string
	daily    string
	cron     string
	dryRun   bool
	resend   bool
	limit    int
	outDir   string
	httpAddr string
	grace    time.Duration
}

func newSendCmd(root *rootOptions) *cobra.Command {
	o := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send the batch now or on a schedule",
		Long: `Send composes and delivers one message per contact that has no successful
delivery in the ledger yet.

Exactly one trigger is required. --at, --daily and --cron keep the process
running and fire in the --tz timezone; overlapping runs are coalesced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd, root)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&o.now, "now", false, "send immediately and exit")
	flags.StringVar(&o.at, "at", "", `send once at local time, e.g. "2025-09-13 19:00"`)
	flags.StringVar(&o.daily, "daily", "", "send every day at HH:MM")
	flags.StringVar(&o.cron, "cron", "", `send on a crontab schedule "m h dom mon dow" (dow: 0=Sunday, 1=Monday, or mon-fri)`)
	flags.BoolVar(&o.dryRun, "dry-run", false, "write previews instead of sending")
	flags.BoolVar(&o.resend, "resend", false, "ignore the ledger and send to everyone again")
	flags.IntVar(&o.limit, "limit", 0, "maximum messages to send per run (0 = no limit)")
	flags.StringVar(&o.outDir, "out-dir", "", "dry-run preview directory (default <log dir>/dry-run)")
	flags.StringVar(&o.httpAddr, "http-addr", "", "serve health, dashboard and previews while scheduled, e.g. :8080")
	flags.DurationVar(&o.grace, "misfire-grace", schedule.DefaultMisfireGrace, "how late a --at trigger may still fire")

	cmd.MarkFlagsMutuallyExclusive("now", "at", "daily", "cron")
	cmd.MarkFlagsOneRequired("now", "at", "daily", "cron")
	cmd.MarkFlagsMutuallyExclusive("now", "http-addr")

	return cmd
}

func (o *sendOptions) run(cmd *cobra.Command, root *rootOptions) error {
	ctx := cmd.Context()

	e, err := root.setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	opts := app.SendOptions{
		DryRun: o.dryRun,
		Resend: o.resend,
		Limit:  o.limit,
		OutDir: o.outDir,
	}
	job := func(ctx context.Context) error {
		out, err := e.app.Send(ctx, opts)
		fmt.Fprintf(cmd.OutOrStdout(), "sent %d, skipped %d, failed %d, invalid %d\n",
			out.Sent, out.Skipped, out.Failed, out.Invalid)
		return err
	}

	if o.now {
		return job(ctx)
	}

	loc, err := schedule.LoadLocation(e.cfg.Timezone)
	if err != nil {
		return err
	}

	s := schedule.New(loc, job,
		schedule.WithLogger(e.logger),
		schedule.WithKey(e.app.LedgerKey()),
		schedule.WithMisfireGrace(o.grace),
	)
	if err := o.addTrigger(s, loc); err != nil {
		return err
	}

	return serve(ctx, s, e, o.httpAddr)
}

func (o *sendOptions) addTrigger(s *schedule.Scheduler, loc *time.Location) error {
	switch {
	case o.at != "":
		at, err := schedule.ParseAt(o.at, loc)
		if err != nil {
			return err
		}
		return s.At(at)
	case o.daily != "":
		return s.Daily(o.daily)
	default:
		return s.Cron(o.cron)
	}
}

// serve runs the scheduler and, when addr is set, the HTTP surface. The
// server stops once the scheduler has nothing left to fire.
func serve(ctx context.Context, s *schedule.Scheduler, e *env, addr string) error {
	g, gctx := errgroup.WithContext(ctx)
	srvCtx, stop := context.WithCancel(gctx)
	defer stop()

	g.Go(func() error {
		defer stop()
		return s.Run(gctx)
	})

	if addr != "" {
		g.Go(func() error {
			h := web.NewRouter(e.app, e.app.Checks(), e.logger)
			return web.Serve(srvCtx, addr, h, e.logger)
		})
	}

	err := g.Wait()
	e.logger.InfoContext(ctx, "scheduler stopped", slog.Bool("interrupted", ctx.Err() != nil))
	return err
}
