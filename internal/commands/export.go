package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tiptally-dev/tiptally/internal/export"
	"github.com/tiptally-dev/tiptally/internal/identity"
	"github.com/tiptally-dev/tiptally/internal/ledger"
	"github.com/tiptally-dev/tiptally/internal/model"
	"github.com/tiptally-dev/tiptally/internal/store"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the transaction log and balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			f, err := export.ParseFormat(format)
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

			now := time.Now()

			// "-" streams to stdout instead of a file.
			if output == "-" {
				return writeExport(cmd.OutOrStdout(), f, state.Transactions, aggregate, now)
			}

			path := output
			if path == "" {
				path = filepath.Join(dir, "exports", export.DefaultFileName(f, now))
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("creating export dir: %w", err)
			}

			out, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			defer out.Close()

			if err := writeExport(out, f, state.Transactions, aggregate, now); err != nil {
				return err
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("closing export file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transactions to %s\n", len(state.Transactions), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "export format: csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, or - for stdout (default exports/tiptally_<date>.<format>)")

	return cmd
}

func writeExport(w io.Writer, f export.Format, log []model.Transaction, aggregate map[string]model.LedgerEntry, now time.Time) error {
	switch f {
	case export.FormatCSV:
		return export.WriteCSV(w, log, aggregate)
	case export.FormatJSON:
		return export.WriteJSON(w, log, aggregate, now)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}
