package harness

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertGoldenText(t *testing.T, name, text string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(text))
}

func equalPair() *Report {
	r := &Report{SuiteID: "suite-1"}
	base := Row{
		SuiteID:      "suite-1",
		Scenario:     "Equal",
		ScenarioHash: "abc",
		OpsPerWorker: 10,
	}

	one := base
	one.ID, one.Threads, one.TotalOps = "run-1", 1, 10
	one.Elapsed, one.TraceHash, one.Snapshot = 1500*time.Millisecond, "t1", "1 0"
	r.Add(one)

	two := base
	two.ID, two.Threads, two.TotalOps = "run-2", 2, 20
	two.Elapsed, two.TraceHash, two.Snapshot = 2*time.Second, "t2", "1 1"
	r.Add(two)

	return r
}

func TestReport_Golden(t *testing.T) {
	require.NoError(t, AssertGolden(t, "equal_pair", equalPair()))
}

func TestReport_TableGolden(t *testing.T) {
	r := &Report{}
	add := func(name string, threads int, d time.Duration) {
		r.Add(Row{Scenario: name, Threads: threads, OpsPerWorker: 1_000_000, Elapsed: d})
	}
	add("Specific", 1, 250*time.Millisecond)
	add("Specific", 2, 500*time.Millisecond)
	add("Specific", 3, 750*time.Millisecond)
	add("Equal", 1, 1500*time.Millisecond)
	add("Equal", 2, 2250*time.Millisecond)
	add("Random", 3, 3*time.Second+time.Microsecond)
	add("Random", 1, 125*time.Millisecond)
	add("Random", 2, 62500*time.Microsecond)

	assertGoldenText(t, "results_table", r.Table())
}

func TestReport_Add(t *testing.T) {
	r := &Report{}
	r.Add(Row{Scenario: "a", Threads: 3, OpsPerWorker: 5})
	r.Add(Row{Scenario: "b", Threads: 1, OpsPerWorker: 5})
	r.Add(Row{Scenario: "a", Threads: 1, OpsPerWorker: 5})

	assert.Equal(t, []int{1, 3}, r.Threads)
	assert.Equal(t, 5, r.OpsPerWorker)
	assert.False(t, r.MixedOps)
	assert.Equal(t, []string{"a", "b"}, r.Scenarios())

	r.Add(Row{Scenario: "c", Threads: 2, OpsPerWorker: 6})
	assert.True(t, r.MixedOps)
	assert.Equal(t, []int{1, 2, 3}, r.Threads)
}

func TestReport_Lookup(t *testing.T) {
	r := equalPair()

	row, ok := r.Lookup("Equal", 2)
	require.True(t, ok)
	assert.Equal(t, "run-2", row.ID)

	_, ok = r.Lookup("Equal", 3)
	assert.False(t, ok)
	_, ok = r.Lookup("Random", 1)
	assert.False(t, ok)
}

func TestReport_EmptyTable(t *testing.T) {
	r := &Report{}
	assert.Equal(t, "Test running with 0 operations per thread.\n            Scenario\n", r.Table())
}

func TestThreadsLabel(t *testing.T) {
	assert.Equal(t, "1 Thread", threadsLabel(1))
	assert.Equal(t, "2 Threads", threadsLabel(2))
	assert.Equal(t, "16 Threads", threadsLabel(16))
}
