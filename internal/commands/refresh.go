package commands

import (
	"github.com/spf13/cobra"
)

func newRefreshCommand(opts *rootOptions) *cobra.Command {
	flags := &ingestFlags{}

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch only transactions newer than the stored log",
		Long:  "Pages through the source newest-first and stops at the first already-known transaction.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngestCommand(cmd, opts, flags, true)
		},
	}
	flags.register(cmd)
	return cmd
}
