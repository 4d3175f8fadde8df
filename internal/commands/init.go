package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tiptally-dev/tiptally/internal/config"
	"github.com/tiptally-dev/tiptally/internal/gitops"
	"github.com/tiptally-dev/tiptally/internal/identity"
	"github.com/tiptally-dev/tiptally/internal/store"
)

func newInitCommand(opts *rootOptions) *cobra.Command {
	var sourceURL string
	var self string
	var excluded string
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new tiptally data directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.dataDir
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, sourceURL, self, excluded, noGit)
		},
	}

	cmd.Flags().StringVar(&sourceURL, "source-url", "", "paginated transaction endpoint (required)")
	_ = cmd.MarkFlagRequired("source-url")
	cmd.Flags().StringVar(&self, "self", "", "comma-separated identities that are you")
	cmd.Flags().StringVar(&excluded, "excluded", "", "comma-separated identities to exclude from balances")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "skip git repository setup")

	return cmd
}

func runInit(cmd *cobra.Command, dir, sourceURL, self, excluded string, noGit bool) error {
	for _, d := range []string{"logs", "exports"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(sourceURL)
	cfg.Identities.Self = identity.ParseList(self).All()
	cfg.Identities.Excluded = identity.ParseList(excluded).All()
	cfg.Git.AutoCommit = !noGit
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Seed an empty state so the first refresh has a log to extend.
	st := store.New(dir)
	if err := st.Save(&store.State{
		SelfIdentities:     cfg.Identities.Self,
		ExcludedIdentities: cfg.Identities.Excluded,
	}); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}

	gitignore := "exports/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if noGit {
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized tiptally data directory at %s\n", dir)
		return nil
	}

	if err := gitops.Init(dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	hash, err := gitops.CommitAll(dir, "init: new tiptally data directory", cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized tiptally data directory at %s (%s)\n", dir, hash)
	return nil
}
