package store

import (
	"context"
	"fmt"

	"github.com/roach88/slotbench/internal/harness"
	"github.com/roach88/slotbench/internal/ir"
)

// WriteRun appends a measured run and its worker counters.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: a duplicate run ID is
// silently ignored, along with its worker rows.
func (s *Store) WriteRun(ctx context.Context, row harness.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, suite_id, scenario, scenario_hash, threads, ops_per_worker, total_ops, elapsed_ns, trace_hash, snapshot, tool_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		row.ID,
		row.SuiteID,
		row.Scenario,
		row.ScenarioHash,
		row.Threads,
		row.OpsPerWorker,
		row.TotalOps,
		int64(row.Elapsed),
		row.TraceHash,
		row.Snapshot,
		ir.ToolVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if inserted == 0 {
		return nil
	}

	for i, w := range row.Workers {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO worker_stats
			(run_id, worker, state, executed, reads, writes, snapshots, skipped, sink)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			row.ID,
			i,
			w.State.String(),
			w.Executed,
			w.Reads,
			w.Writes,
			w.Snapshots,
			w.Skipped,
			w.Sink,
		)
		if err != nil {
			return fmt.Errorf("write worker %d stats: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

// Record implements harness.Recorder.
func (s *Store) Record(ctx context.Context, row harness.Row) error {
	return s.WriteRun(ctx, row)
}
