package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tiptally-dev/tiptally/internal/runlog"
)

func newRunsCommand(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show the history of ingestion runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := opts.absDataDir()
			if err != nil {
				return err
			}

			entries, err := runlog.Read(dir)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}

			// Most recent first.
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tMODE\tPAGES\tNEW\tTOTAL\tSTATUS\tMESSAGE")
			for i := len(entries) - 1; i >= 0; i-- {
				e := entries[i]
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
					e.Timestamp.Local().Format(time.DateTime),
					e.Mode, e.Pages, e.NewCount, e.Total, e.Status, e.Message)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show at most this many recent runs")

	return cmd
}
