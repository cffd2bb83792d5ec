package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReportCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Regenerate the delivery dashboard",
		Long: `Report joins the contacts file with the delivery ledger and writes the
HTML dashboard. When REPORT_S3_BUCKET is set the dashboard is also uploaded
and its link printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := root.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			link, err := e.app.Report(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		},
	}
}
