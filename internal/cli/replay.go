package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/slotbench/internal/engine"
	"github.com/roach88/slotbench/internal/fieldstore"
	"github.com/roach88/slotbench/internal/ir"
	"github.com/roach88/slotbench/internal/trace"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions

	// EngineOptions are appended to the engine options (for testing).
	EngineOptions []engine.Option
}

// ReplayResult holds the outcome of one replay.
type ReplayResult struct {
	Files     []string             `json:"files"`
	Workers   int                  `json:"workers"`
	TotalOps  int                  `json:"total_ops"`
	Dropped   int                  `json:"dropped_lines"`
	Elapsed   float64              `json:"elapsed_seconds"`
	Snapshot  string               `json:"snapshot"`
	TraceHash string               `json:"trace_hash"`
	Stats     []engine.WorkerStats `json:"worker_stats"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	return newReplayCommand(&ReplayOptions{RootOptions: rootOpts})
}

func newReplayCommand(opts *ReplayOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace-file>...",
		Short: "Replay trace files concurrently against a fresh store",
		Long: `Replay trace files, one worker per file, against a fresh store and
report the elapsed time and the final store state.

Malformed trace lines are dropped and counted. Slots outside the store
are ignored by the store itself.

Exit codes:
  0 - Replay completed
  1 - A worker failed or the worker limit was exceeded
  2 - Command error (missing file, bad config)

Examples:
  slotbench replay ./traces/equal_0.txt ./traces/equal_1.txt
  slotbench replay --slots 4 ./traces/*.txt --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args, cmd)
		},
	}

	cmd.Flags().Int("slots", fieldstore.DefaultSlots, "store slots")
	cmd.Flags().Int("max-workers", 0, "refuse to replay more files than this (0 = no limit)")
	bindFlag(cmd.Flags(), "slots", "bench.slots")
	bindFlag(cmd.Flags(), "max-workers", "bench.max_workers")

	return cmd
}

func runReplay(opts *ReplayOptions, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions, cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}

	seqs, stats, err := trace.LoadFiles(files)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeTrace, "failed to load traces", err)
	}
	formatter.VerboseLog("loaded %d trace(s): %d ops, %d line(s) dropped", len(seqs), stats.Ops, stats.Dropped)

	traceHash, err := ir.SequenceHash(seqs)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeTrace, "failed to hash traces", err)
	}

	st := fieldstore.New(cfg.Bench.Slots)
	engineOpts := []engine.Option{
		engine.WithLogger(newLogger(opts.RootOptions, level, cmd.ErrOrStderr())),
		engine.WithMaxWorkers(cfg.Bench.MaxWorkers),
	}
	engineOpts = append(engineOpts, opts.EngineOptions...)

	res, err := engine.Run(st, seqs, engineOpts...)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeRun, "replay failed", err)
	}

	result := ReplayResult{
		Files:     files,
		Workers:   len(seqs),
		TotalOps:  res.TotalOps,
		Dropped:   stats.Dropped,
		Elapsed:   res.Elapsed.Seconds(),
		Snapshot:  st.Snapshot(),
		TraceHash: traceHash,
		Stats:     res.Workers,
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return outputReplayText(formatter, result)
}

func outputReplayText(formatter *OutputFormatter, result ReplayResult) error {
	w := formatter.Writer
	fmt.Fprintf(w, "Replayed %d trace(s): %d operations in %.6f s\n",
		result.Workers, result.TotalOps, result.Elapsed)
	if result.Dropped > 0 {
		fmt.Fprintf(w, "Dropped %d malformed line(s)\n", result.Dropped)
	}
	fmt.Fprintf(w, "Final state: %s\n", result.Snapshot)

	if formatter.Verbose {
		for i, s := range result.Stats {
			fmt.Fprintf(w, "  worker %d (%s): %d executed, %d read, %d write, %d snapshot, sink %d\n",
				i, result.Files[i], s.Executed, s.Reads, s.Writes, s.Snapshots, s.Sink)
		}
		fmt.Fprintf(w, "Trace hash: %s\n", result.TraceHash)
	}
	return nil
}
