package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiptally-dev/tiptally/internal/commands"
	"github.com/tiptally-dev/tiptally/internal/config"
	"github.com/tiptally-dev/tiptally/internal/store"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func initDir(t *testing.T, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	args := append([]string{
		"init", dir,
		"--source-url", "http://example.test/tips",
		"--no-git",
	}, extra...)
	_, err := runCLI(t, args...)
	require.NoError(t, err)
	return dir
}

func writeReplay(t *testing.T, pages string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pages.json")
	require.NoError(t, os.WriteFile(path, []byte(pages), 0o644))
	return path
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := initDir(t, "--self", "me,Me2", "--excluded", "bot")

	for _, f := range []string{config.FileName, "state.json", ".gitignore", "logs", "exports"} {
		_, err := os.Stat(filepath.Join(dir, f))
		require.NoError(t, err, "%s should exist", f)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/tips", cfg.Source.URL)
	assert.Equal(t, []string{"me", "Me2"}, cfg.Identities.Self)
	assert.Equal(t, []string{"bot"}, cfg.Identities.Excluded)
	assert.False(t, cfg.Git.AutoCommit)

	state, err := store.New(dir).Load()
	require.NoError(t, err)
	assert.Empty(t, state.Transactions)
	assert.Equal(t, []string{"me", "Me2"}, state.SelfIdentities)
}

func TestInit_RequiresSourceURL(t *testing.T) {
	_, err := runCLI(t, "init", t.TempDir(), "--no-git")
	require.Error(t, err)
}

func TestScrape_Replay(t *testing.T) {
	dir := initDir(t, "--self", "me")
	replay := writeReplay(t, `[
		[
			{"from": "me", "to": "alice", "amount": "5.00", "date": "2024/03/15 02:30 PM"},
			{"from": "bob", "to": "me", "amount": "2.00", "date": "2024/03/15 02:00 PM"}
		],
		[
			{"from": "carol", "to": "dave", "amount": "1.00", "date": "2024/03/15 01:00 PM"}
		]
	]`)

	out, err := runCLI(t, "--data-dir", dir, "scrape", "--replay", replay)
	require.NoError(t, err)
	assert.Contains(t, out, "3 new transactions")

	state, err := store.New(dir).Load()
	require.NoError(t, err)
	assert.Len(t, state.Transactions, 3)
}

func TestRefresh_SecondRunFindsNothingNew(t *testing.T) {
	dir := initDir(t)
	replay := writeReplay(t, `[
		[{"from": "a", "to": "b", "amount": "1.00", "date": "2024/03/15 02:30 PM"}]
	]`)

	out, err := runCLI(t, "--data-dir", dir, "refresh", "--replay", replay)
	require.NoError(t, err)
	assert.Contains(t, out, "1 new transactions")

	out, err = runCLI(t, "--data-dir", dir, "refresh", "--replay", replay)
	require.NoError(t, err)
	assert.Contains(t, out, "0 new transactions")
}

func TestScrape_MissingConfig(t *testing.T) {
	_, err := runCLI(t, "--data-dir", t.TempDir(), "scrape")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tiptally.yaml")
}

func TestBalances(t *testing.T) {
	dir := initDir(t, "--self", "me")
	replay := writeReplay(t, `[
		[
			{"from": "me", "to": "alice", "amount": "5.00", "date": "2024/03/15 02:30 PM"},
			{"from": "me", "to": "bob", "amount": "1.00", "date": "2024/03/15 02:00 PM"},
			{"from": "bob", "to": "me", "amount": "3.00", "date": "2024/03/15 01:00 PM"}
		]
	]`)
	_, err := runCLI(t, "--data-dir", dir, "scrape", "--replay", replay)
	require.NoError(t, err)

	out, err := runCLI(t, "--data-dir", dir, "balances")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "bob")
	assert.NotContains(t, out, "me ")
	assert.Contains(t, out, "Waiting on: 5.00 SC")
	assert.Contains(t, out, "You owe: 2.00 SC")
}

func TestBalances_Search(t *testing.T) {
	dir := initDir(t, "--self", "me")
	replay := writeReplay(t, `[
		[
			{"from": "me", "to": "alice", "amount": "5.00", "date": "2024/03/15 02:30 PM"},
			{"from": "me", "to": "bob", "amount": "1.00", "date": "2024/03/15 02:00 PM"}
		]
	]`)
	_, err := runCLI(t, "--data-dir", dir, "scrape", "--replay", replay)
	require.NoError(t, err)

	out, err := runCLI(t, "--data-dir", dir, "balances", "--search", "ali")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")
	assert.NotContains(t, out, "bob")
}

func TestBalances_BadSort(t *testing.T) {
	dir := initDir(t)
	_, err := runCLI(t, "--data-dir", dir, "balances", "--sort", "shoe-size")
	require.Error(t, err)
}

func TestExport_JSON(t *testing.T) {
	dir := initDir(t)
	replay := writeReplay(t, `[
		[{"from": "a", "to": "b", "amount": "1.00", "date": "2024/03/15 02:30 PM"}]
	]`)
	_, err := runCLI(t, "--data-dir", dir, "scrape", "--replay", replay)
	require.NoError(t, err)

	outFile := filepath.Join(t.TempDir(), "snap.json")
	out, err := runCLI(t, "--data-dir", dir, "export", "--format", "json", "-o", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 transactions")

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"transactions"`)
}

func TestExport_Stdout(t *testing.T) {
	dir := initDir(t)
	replay := writeReplay(t, `[
		[{"from": "a", "to": "b", "amount": "1.00", "date": "2024/03/15 02:30 PM"}]
	]`)
	_, err := runCLI(t, "--data-dir", dir, "scrape", "--replay", replay)
	require.NoError(t, err)

	out, err := runCLI(t, "--data-dir", dir, "export", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "transaction_type,from,to,amount,currency,date,timestamp")
	assert.Contains(t, out, "tip,a,b,1,SC,")
}

func TestExport_DefaultPath(t *testing.T) {
	dir := initDir(t)
	_, err := runCLI(t, "--data-dir", dir, "export")
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "exports", "tiptally_*.csv"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRuns(t *testing.T) {
	dir := initDir(t)

	out, err := runCLI(t, "--data-dir", dir, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded yet.")

	replay := writeReplay(t, `[
		[{"from": "a", "to": "b", "amount": "1.00", "date": "2024/03/15 02:30 PM"}]
	]`)
	_, err = runCLI(t, "--data-dir", dir, "scrape", "--replay", replay)
	require.NoError(t, err)

	out, err = runCLI(t, "--data-dir", dir, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "full")
	assert.Contains(t, out, "completed")
}

func TestClear(t *testing.T) {
	dir := initDir(t, "--self", "me")
	replay := writeReplay(t, `[
		[{"from": "a", "to": "b", "amount": "1.00", "date": "2024/03/15 02:30 PM"}]
	]`)
	_, err := runCLI(t, "--data-dir", dir, "scrape", "--replay", replay)
	require.NoError(t, err)

	_, err = runCLI(t, "--data-dir", dir, "clear")
	require.Error(t, err, "clear without --force must refuse")

	out, err := runCLI(t, "--data-dir", dir, "clear", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 1 transactions.")

	state, err := store.New(dir).Load()
	require.NoError(t, err)
	assert.Empty(t, state.Transactions)
	assert.Equal(t, []string{"me"}, state.SelfIdentities)
}
