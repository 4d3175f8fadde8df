package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tiptally-dev/tiptally/internal/config"
	"github.com/tiptally-dev/tiptally/internal/gitops"
	"github.com/tiptally-dev/tiptally/internal/ingest"
	"github.com/tiptally-dev/tiptally/internal/runlog"
	"github.com/tiptally-dev/tiptally/internal/source"
	"github.com/tiptally-dev/tiptally/internal/store"
)

// ingestFlags are the flags shared by scrape and refresh.
type ingestFlags struct {
	pageLimit int
	replay    string
}

func (f *ingestFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.pageLimit, "page-limit", 0, "max pages to fetch (default from config)")
	cmd.Flags().StringVar(&f.replay, "replay", "", "read pages from a JSON replay file instead of the source URL")
}

func newScrapeCommand(opts *rootOptions) *cobra.Command {
	flags := &ingestFlags{}

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Rebuild the transaction log from scratch",
		Long:  "Fetches every page up to the page limit and replaces the stored transaction log with the result.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngestCommand(cmd, opts, flags, false)
		},
	}
	flags.register(cmd)
	return cmd
}

func runIngestCommand(cmd *cobra.Command, opts *rootOptions, flags *ingestFlags, incremental bool) error {
	dir, cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger := opts.logger()

	src, err := buildSource(cfg, flags.replay)
	if err != nil {
		return err
	}

	pageLimit := flags.pageLimit
	if pageLimit == 0 {
		pageLimit = cfg.Ingest.PageLimit
	}

	st := store.New(dir)
	if err := syncIdentities(st, cfg); err != nil {
		return err
	}

	mode := runlog.ModeFull
	if incremental {
		mode = runlog.ModeIncremental
	}

	runner := ingest.NewRunner(st, ingest.LogSink{Logger: logger}, logger)
	res, err := runner.Run(cmd.Context(), src, ingest.Options{
		PageLimit:   pageLimit,
		Incremental: incremental,
	})
	if err != nil {
		entry := runlog.Entry{
			Timestamp: time.Now(),
			Mode:      mode,
			Status:    runlog.StatusFailed,
			Message:   err.Error(),
		}
		if logErr := runlog.Append(dir, []runlog.Entry{entry}); logErr != nil {
			logger.Warn().Err(logErr).Msg("recording failed run")
		}
		return err
	}

	entry := runlog.Entry{
		Timestamp: time.Now(),
		RunID:     res.RunID,
		Mode:      mode,
		Pages:     res.Pages,
		NewCount:  res.NewCount,
		Total:     len(res.Log),
		Status:    runlog.StatusCompleted,
	}
	if err := runlog.Append(dir, []runlog.Entry{entry}); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	if cfg.Git.AutoCommit {
		msg := fmt.Sprintf("%s: %d new transactions (%d total)", mode, res.NewCount, len(res.Log))
		if _, err := gitops.Snapshot(dir, msg, cfg.Git.AuthorName, cfg.Git.AuthorEmail); err != nil {
			logger.Warn().Err(err).Msg("git snapshot failed")
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d new transactions across %d pages (%d total)\n",
		res.NewCount, res.Pages, len(res.Log))
	if res.DroppedAmount+res.DroppedCurrency > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "skipped %d records with unparsable amounts, %d in untracked currencies\n",
			res.DroppedAmount, res.DroppedCurrency)
	}
	return nil
}

func buildSource(cfg *config.Config, replay string) (ingest.PageSource, error) {
	if replay != "" {
		return source.LoadPages(replay)
	}
	if cfg.Source.URL == "" {
		return nil, fmt.Errorf("no source url configured in %s", config.FileName)
	}
	return source.NewHTTP(cfg.Source.URL, time.Duration(cfg.Source.TimeoutSeconds)*time.Second)
}

// syncIdentities copies the configured identity lists into the stored
// state, so runs and reports agree on who is "self".
func syncIdentities(st *store.Store, cfg *config.Config) error {
	state, err := st.Load()
	if err != nil {
		return err
	}
	state.SelfIdentities = cfg.Identities.Self
	state.ExcludedIdentities = cfg.Identities.Excluded
	return st.Save(state)
}
