package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cueScenario = `
name:        "Wide"
description: "snapshots over four slots"
slots:       4
threads: [1, 4]
mix: [
	{op: "string", weight: 3.0},
	{op: "write", slot: 3, value: 1, weight: 1.0},
]
`

func TestValidate_Valid(t *testing.T) {
	dir := t.TempDir()
	yamlPath := writeFile(t, dir, "hot.yaml", hotScenario)
	cuePath := writeFile(t, dir, "wide.cue", cueScenario)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), yamlPath, cuePath)
	require.NoError(t, err)
	assert.Equal(t, "✓ All scenarios valid (2)\n", out)
}

func TestValidate_ValidJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "wide.cue", cueScenario)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "Wide", resp.Data.Scenarios[0].Name)
	assert.Equal(t, []int{1, 4}, resp.Data.Scenarios[0].Threads)
	assert.Equal(t, 2, resp.Data.Scenarios[0].Shapes)
	assert.NotEmpty(t, resp.Data.Scenarios[0].Hash)
}

func TestValidate_Invalid(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "hot.yaml", hotScenario)
	typo := writeFile(t, dir, "typo.yaml", hotScenario+"treads: [2]\n")
	zero := writeFile(t, dir, "zero.yaml", `
name: Zero
description: all weights zero
threads: [1]
mix:
  - op: read
    weight: 0
`)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), good, typo, zero)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 2 error(s)")

	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, typo+"\n  E102: ")
	assert.Contains(t, out, zero+"\n  E102: ")
	assert.NotContains(t, out, good)
}

func TestValidate_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.yaml", "name: x\n")

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, path, resp.Data.Errors[0].File)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeScenario, resp.Error.Code)
}

func TestValidate_FileNotFound(t *testing.T) {
	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "file not found")
}

func TestValidate_RequiresFiles(t *testing.T) {
	_, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
}
