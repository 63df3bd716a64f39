package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/slotbench/internal/harness"
	"github.com/roach88/slotbench/internal/testutil"
)

// hotScenario writes a constant value to slot 1, so its traces and final
// state are fully predictable.
const hotScenario = `
name: Hot
description: every operation writes 7 to slot 1
ops_per_worker: 4
threads: [1, 2]
mix:
  - op: write
    slot: 1
    value: 7
    weight: 1
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// deterministicBench returns a bench command whose runs each take exactly
// one millisecond and whose IDs are cli-0001, cli-0002, ...
func deterministicBench(format string) *cobra.Command {
	return newBenchCommand(&BenchOptions{
		RootOptions:  &RootOptions{Format: format},
		SuiteOptions: deterministicBenchOptions(),
	})
}

func deterministicBenchOptions() []harness.SuiteOption {
	return []harness.SuiteOption{
		harness.WithClock(testutil.NewStepClock(time.Millisecond)),
		harness.WithIDGenerator(testutil.NewSequentialIDGenerator("cli")),
	}
}
