package metric

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/slotbench/internal/engine"
	"github.com/roach88/slotbench/internal/harness"
)

func row(scenario string, threads int, elapsed time.Duration) harness.Row {
	workers := make([]engine.WorkerStats, threads)
	for i := range workers {
		workers[i] = engine.WorkerStats{State: engine.StateCompleted, Executed: 10, Reads: 5, Writes: 3, Snapshots: 2}
	}
	return harness.Row{
		Scenario: scenario,
		Threads:  threads,
		TotalOps: 10 * threads,
		Elapsed:  elapsed,
		Workers:  workers,
	}
}

func TestRegistry_Record(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	require.NoError(t, r.Record(ctx, row("Equal", 2, 500*time.Millisecond)))
	require.NoError(t, r.Record(ctx, row("Equal", 2, 250*time.Millisecond)))
	require.NoError(t, r.Record(ctx, row("Random", 1, time.Second)))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("Equal", "2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("Random", "1")))
	assert.Equal(t, 0.25, testutil.ToFloat64(r.elapsed.WithLabelValues("Equal", "2")), "latest run wins")
	assert.Equal(t, 80.0, testutil.ToFloat64(r.opsPerSecond.WithLabelValues("Equal", "2")))

	// 5 workers in total across the three rows.
	assert.Equal(t, 25.0, testutil.ToFloat64(r.opsTotal.WithLabelValues("read")))
	assert.Equal(t, 15.0, testutil.ToFloat64(r.opsTotal.WithLabelValues("write")))
	assert.Equal(t, 10.0, testutil.ToFloat64(r.opsTotal.WithLabelValues("string")))

	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
}

func TestRegistry_ZeroElapsedSkipsThroughput(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Record(context.Background(), row("Equal", 1, 0)))

	assert.Equal(t, 0, testutil.CollectAndCount(r.opsPerSecond))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("Equal", "1")))
}

func TestRegistry_WriteTextfile(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Record(context.Background(), row("Specific", 3, 2*time.Second)))

	path := filepath.Join(t.TempDir(), "slotbench.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `slotbench_runs_total{scenario="Specific",threads="3"} 1`)
	assert.Contains(t, text, `slotbench_run_elapsed_seconds{scenario="Specific",threads="3"} 2`)
	assert.Contains(t, text, "slotbench_build_info")
	assert.True(t, strings.HasSuffix(text, "\n"))
}

func TestRegistry_WriteTextfileBadDir(t *testing.T) {
	r := NewRegistry()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.Error(t, err)
}

func TestRegistry_Gatherer(t *testing.T) {
	r := NewRegistry()
	families, err := r.Gatherer().Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	// Vectors without observations are not gathered; build info always is.
	assert.True(t, names["slotbench_build_info"])
}

func TestRegistry_ImplementsRecorder(t *testing.T) {
	var _ harness.Recorder = NewRegistry()
}
