package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tiptally-dev/tiptally/internal/store"
)

func newClearCommand(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored transaction log",
		Long:  "Empties the transaction log while keeping identity settings. The next scrape rebuilds it from the source.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to clear without --force")
			}

			dir, err := opts.absDataDir()
			if err != nil {
				return err
			}

			st := store.New(dir)
			state, err := st.Load()
			if err != nil {
				return err
			}
			count := len(state.Transactions)

			if err := st.Clear(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d transactions.\n", count)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "confirm deletion")

	return cmd
}
