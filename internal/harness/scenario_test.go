package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/slotbench/internal/fieldstore"
	"github.com/roach88/slotbench/internal/ir"
	"github.com/roach88/slotbench/internal/trace"
)

// writeScenario writes content to name under a fresh temp dir.
func writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidYAML(t *testing.T) {
	path := writeScenario(t, "specific.yaml", `
name: Specific
description: "read-heavy on slot 0"
slots: 2
ops_per_worker: 500
threads: [1, 2, 3]
seed: 42
file_prefix: var
mix:
  - { op: read, slot: 0, weight: 40 }
  - { op: write, slot: 0, value: 1, weight: 5 }
  - { op: read, slot: 1, weight: 5 }
  - { op: write, slot: 1, value: 1, weight: 5 }
  - { op: string, weight: 45 }
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "Specific", scenario.Name)
	assert.Equal(t, 2, scenario.Slots)
	assert.Equal(t, 500, scenario.OpsPerWorker)
	assert.Equal(t, []int{1, 2, 3}, scenario.Threads)
	assert.Equal(t, uint64(42), scenario.Seed)
	assert.Equal(t, "var", scenario.Prefix())

	mix, err := scenario.TraceMix()
	require.NoError(t, err)
	assert.Equal(t, trace.SpecificMix, mix)
}

func TestLoadScenario_YMLExtensionAndDefaults(t *testing.T) {
	path := writeScenario(t, "writes.yml", `
name: Writes
description: "only writes"
threads: [4]
mix:
  - { op: write, slot: 1, value: 3, weight: 1 }
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, fieldstore.DefaultSlots, scenario.SlotCount())
	assert.Equal(t, 0, scenario.OpsPerWorker)
	assert.Equal(t, "writes_", scenario.Prefix())
	assert.Equal(t, 4, scenario.MaxThreads())
}

func TestLoadScenario_ValidCUE(t *testing.T) {
	path := writeScenario(t, "wide.cue", `
name:        "Wide"
description: "writes across three slots"
slots:       3
threads: [1, 4]
seed: 7
mix: [
	{op: "write", slot: 2, value: 9, weight: 1.0},
	{op: "snapshot", weight: 3.5},
]
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "Wide", scenario.Name)
	assert.Equal(t, 3, scenario.Slots)
	assert.Equal(t, []int{1, 4}, scenario.Threads)
	assert.Equal(t, uint64(7), scenario.Seed)
	require.Len(t, scenario.Mix, 2)
	assert.Equal(t, ShapeSpec{Op: "write", Slot: 2, Value: 9, Weight: 1}, scenario.Mix[0])

	mix, err := scenario.TraceMix()
	require.NoError(t, err)
	assert.Equal(t, ir.OpSnapshot, mix[1].Op)
}

func TestLoadScenario_CUEUnknownField(t *testing.T) {
	path := writeScenario(t, "bad.cue", `
name: "x"
description: "y"
threads: [1]
mix: [{op: "read", slot: 0, weight: 1.0}]
bogus: 1
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field bogus")
}

func TestLoadScenario_CUEUnknownShapeField(t *testing.T) {
	path := writeScenario(t, "bad.cue", `
name: "x"
description: "y"
threads: [1]
mix: [{op: "read", slot: 0, weight: 1.0, extra: true}]
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field mix[0].extra")
}

func TestLoadScenario_CUESyntaxError(t *testing.T) {
	path := writeScenario(t, "broken.cue", `name: "x`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse CUE")
}

func TestLoadScenario_YAMLUnknownField(t *testing.T) {
	path := writeScenario(t, "typo.yaml", `
name: x
description: y
thread: [1]
mix:
  - { op: read, weight: 1 }
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
	assert.Contains(t, err.Error(), "thread")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnsupportedExtension(t *testing.T) {
	path := writeScenario(t, "scenario.toml", `name = "x"`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported scenario format ".toml"`)
}

func TestLoadScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `
description: y
threads: [1]
mix: [{ op: read, weight: 1 }]
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			content: `
name: x
threads: [1]
mix: [{ op: read, weight: 1 }]
`,
			wantErr: "description is required",
		},
		{
			name: "no threads",
			content: `
name: x
description: y
mix: [{ op: read, weight: 1 }]
`,
			wantErr: "threads list is required",
		},
		{
			name: "zero workers",
			content: `
name: x
description: y
threads: [1, 0]
mix: [{ op: read, weight: 1 }]
`,
			wantErr: "threads[1]: worker count must be at least 1",
		},
		{
			name: "no mix",
			content: `
name: x
description: y
threads: [1]
`,
			wantErr: "mix list is required",
		},
		{
			name: "missing op",
			content: `
name: x
description: y
threads: [1]
mix: [{ slot: 0, weight: 1 }]
`,
			wantErr: "mix[0]: op is required",
		},
		{
			name: "unknown op",
			content: `
name: x
description: y
threads: [1]
mix: [{ op: delete, weight: 1 }]
`,
			wantErr: `unknown op kind "delete"`,
		},
		{
			name: "slot out of range",
			content: `
name: x
description: y
slots: 2
threads: [1]
mix: [{ op: read, slot: 2, weight: 1 }]
`,
			wantErr: "slot 2 out of range for 2 slots",
		},
		{
			name: "negative slots",
			content: `
name: x
description: y
slots: -1
threads: [1]
mix: [{ op: string, weight: 1 }]
`,
			wantErr: "slots must be non-negative",
		},
		{
			name: "zero total weight",
			content: `
name: x
description: y
threads: [1]
mix: [{ op: read, weight: 0 }]
`,
			wantErr: "total weight must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, "s.yaml", tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenarios_StopsAtFirstFailure(t *testing.T) {
	good := writeScenario(t, "good.yaml", `
name: x
description: y
threads: [1]
mix: [{ op: read, weight: 1 }]
`)
	bad := writeScenario(t, "bad.yaml", `name: x`)

	scenarios, err := LoadScenarios([]string{good})
	require.NoError(t, err)
	assert.Len(t, scenarios, 1)

	_, err = LoadScenarios([]string{good, bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
}

func TestDefaultScenarios(t *testing.T) {
	scenarios := DefaultScenarios(1000)
	require.Len(t, scenarios, 3)

	names := []string{"Specific", "Equal", "Random"}
	prefixes := []string{"var", "equal_", "random_"}
	mixes := []trace.Mix{trace.SpecificMix, trace.EqualMix, trace.RandomMix}

	for i, sc := range scenarios {
		assert.Equal(t, names[i], sc.Name)
		assert.Equal(t, prefixes[i], sc.Prefix())
		assert.Equal(t, []int{1, 2, 3}, sc.Threads)
		assert.Equal(t, 1000, sc.OpsPerWorker)
		assert.NoError(t, sc.Validate())

		mix, err := sc.TraceMix()
		require.NoError(t, err)
		assert.Equal(t, mixes[i], mix)
	}
}

func TestScenario_ValidateSlotCount(t *testing.T) {
	sc := DefaultScenarios(10)[0]
	sc.Slots = 1

	err := sc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range for 1 slots")
}

func TestScenario_Hash(t *testing.T) {
	a := DefaultScenarios(100)[0]
	b := DefaultScenarios(100)[0]

	ha, err := a.Hash(100)
	require.NoError(t, err)
	hb, err := b.Hash(100)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 64)

	b.Seed = 1
	hSeed, err := b.Hash(100)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hSeed)

	hOps, err := a.Hash(200)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hOps)

	// Worker counts do not change the traces, only how many are used.
	a.Threads = []int{8}
	hThreads, err := a.Hash(100)
	require.NoError(t, err)
	assert.Equal(t, ha, hThreads)
}
