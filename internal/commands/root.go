// Package commands wires the tiptally CLI: project setup, scrape and
// refresh runs, balance reporting, export, and run history.
package commands

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tiptally-dev/tiptally/internal/buildinfo"
	"github.com/tiptally-dev/tiptally/internal/config"
	"github.com/tiptally-dev/tiptally/internal/logging"
)

// rootOptions carries the persistent flags shared by every subcommand.
type rootOptions struct {
	dataDir string
	verbose bool
}

func (o *rootOptions) logger() zerolog.Logger {
	return logging.New(o.verbose)
}

func (o *rootOptions) absDataDir() (string, error) {
	dir, err := filepath.Abs(o.dataDir)
	if err != nil {
		return "", fmt.Errorf("resolving data dir: %w", err)
	}
	return dir, nil
}

func (o *rootOptions) loadConfig() (string, *config.Config, error) {
	dir, err := o.absDataDir()
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return "", nil, fmt.Errorf("loading %s (run 'tiptally init' first?): %w", config.FileName, err)
	}
	return dir, cfg, nil
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "tiptally",
		Short:   "Track peer-to-peer tips and who owes whom",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", ".", "data directory holding tiptally.yaml and state.json")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newInitCommand(opts))
	rootCmd.AddCommand(newScrapeCommand(opts))
	rootCmd.AddCommand(newRefreshCommand(opts))
	rootCmd.AddCommand(newBalancesCommand(opts))
	rootCmd.AddCommand(newExportCommand(opts))
	rootCmd.AddCommand(newRunsCommand(opts))
	rootCmd.AddCommand(newClearCommand(opts))

	return rootCmd
}
