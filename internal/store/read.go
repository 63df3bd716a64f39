package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/slotbench/internal/engine"
	"github.com/roach88/slotbench/internal/harness"
)

// ErrNotFound is returned when a run ID is not in the log.
var ErrNotFound = errors.New("not found")

// Run is a logged run.
type Run struct {
	// Seq is the insertion order.
	Seq int64 `json:"seq"`

	harness.Row

	ToolVersion string `json:"tool_version"`
}

// Filter narrows ListRuns. Zero fields match everything.
type Filter struct {
	SuiteID  string
	Scenario string
	Threads  int

	// Limit keeps only the most recent runs when positive.
	Limit int
}

// SuiteSummary describes one recorded suite.
type SuiteSummary struct {
	SuiteID   string   `json:"suite_id"`
	Runs      int      `json:"runs"`
	Scenarios []string `json:"scenarios"`
}

const runColumns = `seq, id, suite_id, scenario, scenario_hash, threads, ops_per_worker,
	total_ops, elapsed_ns, trace_hash, snapshot, tool_version`

// ListRuns returns matching runs, oldest first.
// Worker counters are not loaded; use GetRun for those.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListRuns(ctx context.Context, f Filter) ([]Run, error) {
	var (
		where []string
		args  []any
	)
	if f.SuiteID != "" {
		where = append(where, "suite_id = ?")
		args = append(args, f.SuiteID)
	}
	if f.Scenario != "" {
		where = append(where, "scenario = ?")
		args = append(args, f.Scenario)
	}
	if f.Threads > 0 {
		where = append(where, "threads = ?")
		args = append(args, f.Threads)
	}

	query := "SELECT " + runColumns + " FROM runs"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if f.Limit > 0 {
		query = "SELECT * FROM (" + query + " ORDER BY seq DESC LIMIT ?)"
		args = append(args, f.Limit)
	}
	query += " ORDER BY seq ASC, id COLLATE BINARY ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// GetRun returns one run with its worker counters.
// Returns ErrNotFound if the ID is unknown.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, err
	}

	run.Workers, err = s.readWorkers(ctx, id)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// ListSuites summarizes every recorded suite, oldest first.
func (s *Store) ListSuites(ctx context.Context) ([]SuiteSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT suite_id, scenario, COUNT(*), MIN(seq) AS first_seq
		FROM runs
		GROUP BY suite_id, scenario
		ORDER BY MIN(seq) ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query suites: %w", err)
	}
	defer rows.Close()

	suites := []SuiteSummary{}
	index := map[string]int{}
	for rows.Next() {
		var (
			suiteID, scenario string
			count             int
			firstSeq          int64
		)
		if err := rows.Scan(&suiteID, &scenario, &count, &firstSeq); err != nil {
			return nil, fmt.Errorf("scan suite: %w", err)
		}
		i, ok := index[suiteID]
		if !ok {
			i = len(suites)
			index[suiteID] = i
			suites = append(suites, SuiteSummary{SuiteID: suiteID})
		}
		suites[i].Runs += count
		suites[i].Scenarios = append(suites[i].Scenarios, scenario)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suites: %w", err)
	}

	return suites, nil
}

// readWorkers loads a run's worker counters in worker order.
func (s *Store) readWorkers(ctx context.Context, runID string) ([]engine.WorkerStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT state, executed, reads, writes, snapshots, skipped, sink
		FROM worker_stats
		WHERE run_id = ?
		ORDER BY worker ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query worker stats: %w", err)
	}
	defer rows.Close()

	var workers []engine.WorkerStats
	for rows.Next() {
		var (
			w     engine.WorkerStats
			state string
		)
		if err := rows.Scan(&state, &w.Executed, &w.Reads, &w.Writes, &w.Snapshots, &w.Skipped, &w.Sink); err != nil {
			return nil, fmt.Errorf("scan worker stats: %w", err)
		}
		if w.State, err = engine.ParseWorkerState(state); err != nil {
			return nil, fmt.Errorf("scan worker stats: %w", err)
		}
		workers = append(workers, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate worker stats: %w", err)
	}
	return workers, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run     Run
		elapsed int64
	)
	err := sc.Scan(
		&run.Seq,
		&run.ID,
		&run.SuiteID,
		&run.Scenario,
		&run.ScenarioHash,
		&run.Threads,
		&run.OpsPerWorker,
		&run.TotalOps,
		&elapsed,
		&run.TraceHash,
		&run.Snapshot,
		&run.ToolVersion,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Elapsed = time.Duration(elapsed)
	return run, nil
}
