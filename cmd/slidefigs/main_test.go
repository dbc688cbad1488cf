package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with an isolated config and history.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeIn(t, t.TempDir(), args...)
}

// executeIn runs the root command with its config, history and output
// under dir, so consecutive calls share one history database.
func executeIn(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SLIDEFIGS_DB", filepath.Join(dir, "history.db"))
	t.Setenv("SLIDEFIGS_OUTPUT_DIR", filepath.Join(dir, "out"))
	t.Setenv("SLIDEFIGS_LISTEN", "127.0.0.1:1")
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(dir, "slidefigs.yaml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag to its default, since cobra keeps flag
// state between Execute calls in one process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "slidefigs v"+Version)
}

func TestListJSON(t *testing.T) {
	out, err := execute(t, "list", "--json")
	require.NoError(t, err)

	var entries []struct {
		ID    string `json:"id"`
		Slide int    `json:"slide"`
		File  string `json:"file"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 13)
	assert.Equal(t, 2, entries[0].Slide)
	assert.True(t, strings.HasSuffix(entries[0].File, ".png"))
}

func TestRenderListsFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "slides")
	out, err := execute(t, "render", "iceberg", "-o", dir, "--dpi", "10", "--no-record")
	require.NoError(t, err)

	assert.Contains(t, out, "Created the following visual files:")
	assert.Contains(t, out, "Slide 2: ")
	_, err = os.Stat(filepath.Join(dir, "manifest.json"))
	assert.NoError(t, err)
}

func TestRenderUnknownFigure(t *testing.T) {
	_, err := execute(t, "render", "no-such-figure", "--no-record")
	assert.Error(t, err)
}

func TestInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	out, err := execute(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	_, err = execute(t, "init", path)
	assert.ErrorContains(t, err, "already exists")
}

func TestReadOnlyCommandsWithoutHistory(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "history.db")

	out, err := executeIn(t, dir, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")

	out, err = executeIn(t, dir, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Gallery server is not running.")
	assert.Contains(t, out, "No runs recorded.")

	_, err = executeIn(t, dir, "report")
	assert.ErrorContains(t, err, "no recorded runs")

	_, err = os.Stat(db)
	assert.ErrorIs(t, err, os.ErrNotExist, "read-only commands must not create the history database")
}

func TestHistoryReportStatusAfterRender(t *testing.T) {
	dir := t.TempDir()
	_, err := executeIn(t, dir, "render", "iceberg", "types", "--dpi", "10")
	require.NoError(t, err)

	out, err := executeIn(t, dir, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "RUN")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "2/2")

	out, err = executeIn(t, dir, "history", "iceberg")
	require.NoError(t, err)
	assert.Contains(t, out, "SHA256")
	assert.Contains(t, out, "ok")

	out, err = executeIn(t, dir, "history", "timeline")
	require.NoError(t, err)
	assert.Contains(t, out, "has never been rendered")

	out, err = executeIn(t, dir, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "# slidefigs Render Report")
	assert.Contains(t, out, "## Run Summary")

	out, err = executeIn(t, dir, "report", "--json")
	require.NoError(t, err)
	var report struct {
		RunID string `json:"run_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotEmpty(t, report.RunID)

	out, err = executeIn(t, dir, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Gallery server is not running.")
	assert.Contains(t, out, "Latest run "+report.RunID+" (completed)")
	assert.Contains(t, out, "2 ok, 0 failed")
}

func TestRenderNoRecordDoesNotLeak(t *testing.T) {
	dir := t.TempDir()
	_, err := executeIn(t, dir, "render", "iceberg", "--dpi", "10", "--no-record")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "history.db"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = executeIn(t, dir, "render", "iceberg", "--dpi", "10")
	require.NoError(t, err)
	out, err := executeIn(t, dir, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "1/1")
}
