package commands

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tiptally-dev/tiptally/internal/identity"
	"github.com/tiptally-dev/tiptally/internal/ledger"
	"github.com/tiptally-dev/tiptally/internal/model"
	"github.com/tiptally-dev/tiptally/internal/store"
)

func newBalancesCommand(opts *rootOptions) *cobra.Command {
	var sortBy string
	var search string

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show per-user balances from the stored log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			state, err := store.New(dir).Load()
			if err != nil {
				return err
			}

			aggregate := ledger.Aggregate(state.Transactions,
				identity.NewSet(cfg.Identities.Self...),
				identity.NewSet(cfg.Identities.Excluded...))

			return printBalances(cmd, aggregate, sortBy, search)
		},
	}

	cmd.Flags().StringVar(&sortBy, "sort", "balance", "sort order: balance, name, or activity")
	cmd.Flags().StringVar(&search, "search", "", "only show users whose name contains this")

	return cmd
}

func printBalances(cmd *cobra.Command, aggregate map[string]model.LedgerEntry, sortBy, search string) error {
	names := make([]string, 0, len(aggregate))
	for name := range aggregate {
		if search != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(search)) {
			continue
		}
		names = append(names, name)
	}

	switch sortBy {
	case "balance":
		sort.Slice(names, func(i, j int) bool {
			di, dj := aggregate[names[i]].Delta(), aggregate[names[j]].Delta()
			if !di.Equal(dj) {
				return di.GreaterThan(dj)
			}
			return names[i] < names[j]
		})
	case "name":
		sort.Strings(names)
	case "activity":
		sort.Slice(names, func(i, j int) bool {
			ai, aj := aggregate[names[i]].LastActivity, aggregate[names[j]].LastActivity
			if ai != aj {
				return ai > aj
			}
			return names[i] < names[j]
		})
	default:
		return fmt.Errorf("unknown sort order %q (want balance, name, or activity)", sortBy)
	}

	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, "No balances to show.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USER\tRECEIVED\tSENT\tBALANCE\tLAST ACTIVITY")
	for _, name := range names {
		e := aggregate[name]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			name,
			e.Received.StringFixed(2),
			e.Sent.StringFixed(2),
			e.Delta().StringFixed(2),
			formatActivity(e.LastActivity))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	waitingOn, owed := ledger.Totals(aggregate)
	fmt.Fprintf(out, "\nWaiting on: %s %s\nYou owe: %s %s\n",
		waitingOn.StringFixed(2), model.Tracked,
		owed.StringFixed(2), model.Tracked)
	return nil
}

func formatActivity(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Format("2006-01-02 15:04")
}
