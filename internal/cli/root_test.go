package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "slotbench", cmd.Use)
	assert.Contains(t, cmd.Long, "lock contention")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"generate", "bench", "replay", "history", "validate"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestBenchCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	benchCmd, _, err := cmd.Find([]string{"bench"})
	require.NoError(t, err)

	for flag, def := range map[string]string{
		"ops":              "1000000",
		"threads":          "[1,2,3]",
		"seed":             "1",
		"slots":            "2",
		"trace-dir":        "",
		"max-workers":      "0",
		"db":               "",
		"metrics-textfile": "",
	} {
		f := benchCmd.Flags().Lookup(flag)
		require.NotNil(t, f, flag)
		assert.Equal(t, def, f.DefValue, flag)
	}
}

func TestGenerateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	genCmd, _, err := cmd.Find([]string{"generate"})
	require.NoError(t, err)

	outFlag := genCmd.Flags().Lookup("out")
	require.NotNil(t, outFlag)
	assert.Equal(t, "o", outFlag.Shorthand)
	assert.Equal(t, ".", outFlag.DefValue)
	assert.Nil(t, genCmd.Flags().Lookup("db"))
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--format", "xml", "validate", "x.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestUnknownFlagIsCommandError(t *testing.T) {
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"bench", "--no-such-flag"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFlagOverrides_OnlyChangedBoundFlags(t *testing.T) {
	cmd := NewHistoryCommand(&RootOptions{Format: "text"})
	require.NoError(t, cmd.ParseFlags([]string{"--threads", "4", "--db", "runs.db"}))

	got, err := flagOverrides(cmd.Flags())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"results.database": "runs.db"}, got,
		"history --threads filters runs and must not touch bench.threads")
}

func TestFlagOverrides_Types(t *testing.T) {
	cmd := NewBenchCommand(&RootOptions{Format: "text"})
	require.NoError(t, cmd.ParseFlags([]string{
		"--ops", "50",
		"--threads", "2,4",
		"--seed", "9",
		"--metrics-textfile", "out.prom",
	}))

	got, err := flagOverrides(cmd.Flags())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"bench.ops_per_worker": 50,
		"bench.threads":        []int{2, 4},
		"bench.seed":           uint64(9),
		"metrics.textfile":     "out.prom",
	}, got)
}
