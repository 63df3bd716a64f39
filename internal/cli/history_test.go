package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/slotbench/internal/store"
)

// seedHistory runs the Hot scenario once into a fresh results log.
// The suite is cli-0001 and its runs cli-0002 (1 worker) and cli-0003.
func seedHistory(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	db := filepath.Join(dir, "results.db")
	scenario := writeFile(t, dir, "hot.yaml", hotScenario)

	_, _, err := execute(deterministicBench("text"), scenario, "--db", db)
	require.NoError(t, err)
	return db
}

func TestHistory_ListRuns(t *testing.T) {
	db := seedHistory(t)

	out, _, err := execute(NewHistoryCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Elapsed (s)")
	assert.Contains(t, lines[1], "cli-0001")
	assert.Contains(t, lines[1], "Hot")
	assert.True(t, strings.HasSuffix(lines[2], "0.001000"))
}

func TestHistory_FilterJSON(t *testing.T) {
	db := seedHistory(t)

	out, _, err := execute(NewHistoryCommand(&RootOptions{Format: "json"}), "--db", db, "--threads", "2")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   []store.Run `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "cli-0003", resp.Data[0].ID)
	assert.Equal(t, 2, resp.Data[0].Threads)
	assert.Equal(t, "0 7", resp.Data[0].Snapshot)
}

func TestHistory_NoMatches(t *testing.T) {
	db := seedHistory(t)

	out, _, err := execute(NewHistoryCommand(&RootOptions{Format: "text"}), "--db", db, "--scenario", "Equal")
	require.NoError(t, err)
	assert.Equal(t, "No runs found.\n", out)
}

func TestHistory_Suites(t *testing.T) {
	db := seedHistory(t)

	out, _, err := execute(NewHistoryCommand(&RootOptions{Format: "text"}), "--db", db, "--suites")
	require.NoError(t, err)
	assert.Equal(t, "cli-0001  2 run(s)  Hot\n", out)
}

func TestHistory_SingleRun(t *testing.T) {
	db := seedHistory(t)

	out, _, err := execute(NewHistoryCommand(&RootOptions{Format: "text"}), "--db", db, "--run", "cli-0003")
	require.NoError(t, err)
	assert.Contains(t, out, "Run cli-0003 (suite cli-0001)\n")
	assert.Contains(t, out, "  Operations: 8 (4 per worker)\n")
	assert.Contains(t, out, "  worker 1: completed, 4 executed, 0 read, 4 write, 0 snapshot\n")
}

func TestHistory_UnknownRun(t *testing.T) {
	db := seedHistory(t)

	_, _, err := execute(NewHistoryCommand(&RootOptions{Format: "text"}), "--db", db, "--run", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestHistory_MissingDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "missing.db")

	out, _, err := execute(NewHistoryCommand(&RootOptions{Format: "text"}), "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "results database not found")
	assert.NoFileExists(t, db)
}

func TestHistory_NoDatabaseConfigured(t *testing.T) {
	_, _, err := execute(NewHistoryCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no results database")
}
