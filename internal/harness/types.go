package harness

import (
	"context"
	"slices"
	"time"

	"github.com/roach88/slotbench/internal/engine"
)

// Row is the outcome of one scenario at one worker count.
type Row struct {
	ID           string        `json:"id"`
	SuiteID      string        `json:"suite_id"`
	Scenario     string        `json:"scenario"`
	ScenarioHash string        `json:"scenario_hash"`
	Threads      int           `json:"threads"`
	OpsPerWorker int           `json:"ops_per_worker"`
	TotalOps     int           `json:"total_ops"`
	Elapsed      time.Duration `json:"elapsed_ns"`

	// TraceHash identifies the exact sequences the workers ran.
	TraceHash string `json:"trace_hash"`

	// Snapshot is the store's final state.
	Snapshot string `json:"snapshot"`

	Workers []engine.WorkerStats `json:"workers,omitempty"`
}

// Recorder receives every row as soon as it is measured.
// Implemented by the SQLite results log and the metrics registry.
type Recorder interface {
	Record(ctx context.Context, row Row) error
}

// IDGenerator produces suite and run identifiers.
type IDGenerator interface {
	Generate() string
}

// Report collects the rows of one suite run.
type Report struct {
	SuiteID string `json:"suite_id"`

	// OpsPerWorker is shared by every row unless MixedOps is set.
	OpsPerWorker int  `json:"ops_per_worker"`
	MixedOps     bool `json:"mixed_ops,omitempty"`

	// Threads is the sorted union of worker counts across rows.
	Threads []int `json:"threads"`

	Rows []Row `json:"rows"`
}

// Add appends a row and updates the summary fields.
func (r *Report) Add(row Row) {
	if len(r.Rows) == 0 {
		r.OpsPerWorker = row.OpsPerWorker
	} else if row.OpsPerWorker != r.OpsPerWorker {
		r.MixedOps = true
	}
	if !slices.Contains(r.Threads, row.Threads) {
		r.Threads = append(r.Threads, row.Threads)
		slices.Sort(r.Threads)
	}
	r.Rows = append(r.Rows, row)
}

// Scenarios returns scenario names in first-seen order.
func (r *Report) Scenarios() []string {
	var names []string
	for _, row := range r.Rows {
		if !slices.Contains(names, row.Scenario) {
			names = append(names, row.Scenario)
		}
	}
	return names
}

// Lookup returns the row for a scenario and worker count.
func (r *Report) Lookup(scenario string, threads int) (Row, bool) {
	for _, row := range r.Rows {
		if row.Scenario == scenario && row.Threads == threads {
			return row, true
		}
	}
	return Row{}, false
}
