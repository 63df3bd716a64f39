package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/slotbench/internal/harness"
	"github.com/roach88/slotbench/internal/metric"
	"github.com/roach88/slotbench/internal/store"
)

// BenchOptions holds flags for the bench command.
type BenchOptions struct {
	*RootOptions

	// SuiteOptions are applied after the config-derived options.
	// Tests use this to inject a clock and ID generator.
	SuiteOptions []harness.SuiteOption
}

// BenchResult is the JSON payload of the bench command.
type BenchResult struct {
	*harness.Report
	Database        string `json:"database,omitempty"`
	MetricsTextfile string `json:"metrics_textfile,omitempty"`
}

// NewBenchCommand creates the bench command.
func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	return newBenchCommand(&BenchOptions{RootOptions: rootOpts})
}

func newBenchCommand(opts *BenchOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench [scenario-file...]",
		Short: "Run the benchmark suite and print the results table",
		Long: `Run every scenario at each of its worker counts and print the
elapsed wall-clock seconds per run.

Each run gets a fresh store; a run with k workers replays the first k
traces of its scenario. Without scenario files the built-in Specific,
Equal and Random scenarios run at 1, 2 and 3 workers.

Results can also be logged to SQLite (--db) and written as Prometheus
metrics in the node_exporter textfile format (--metrics-textfile).

Exit codes:
  0 - All runs completed
  1 - A run failed (worker panic, worker limit exceeded)
  2 - Command error (bad config, scenario file, database)

Examples:
  slotbench bench
  slotbench bench --ops 100000 --threads 1,2,4,8
  slotbench bench --db ./results.db --format json
  slotbench bench ./scenarios/*.yaml --trace-dir ./traces`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(opts, args, cmd)
		},
	}

	addBenchFlags(cmd.Flags())
	cmd.Flags().String("trace-dir", "", "write traces here and replay them from disk")
	cmd.Flags().Int("max-workers", 0, "refuse runs with more workers than this (0 = no limit)")
	cmd.Flags().String("db", "", "SQLite results log to append runs to")
	cmd.Flags().String("metrics-textfile", "", "write Prometheus metrics to this file after the suite")
	bindFlag(cmd.Flags(), "trace-dir", "bench.trace_dir")
	bindFlag(cmd.Flags(), "max-workers", "bench.max_workers")
	bindFlag(cmd.Flags(), "db", "results.database")
	bindFlag(cmd.Flags(), "metrics-textfile", "metrics.textfile")

	return cmd
}

func runBench(opts *BenchOptions, paths []string, cmd *cobra.Command) (err error) {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions, cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}
	scenarios, err := selectScenarios(cfg, paths)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeScenario, "failed to load scenarios", err)
	}
	if cfg.Bench.TraceDir != "" {
		if err := os.MkdirAll(cfg.Bench.TraceDir, 0o755); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeTrace, "failed to create trace directory", err)
		}
	}

	var recorders []harness.Recorder
	if cfg.Results.Database != "" {
		st, err := store.Open(cfg.Results.Database)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open results database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil && err == nil {
				err = WrapExitError(ExitCommandError, "failed to close results database", closeErr)
			}
		}()
		recorders = append(recorders, st)
	}

	var registry *metric.Registry
	if cfg.Metrics.Textfile != "" {
		registry = metric.NewRegistry()
		recorders = append(recorders, registry)
	}

	suite, err := newSuite(cfg, cmd, opts.RootOptions, recorders, opts.SuiteOptions...)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, runErr := suite.Run(ctx, scenarios)

	if registry != nil {
		if err := registry.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeMetrics, "failed to write metrics", err)
		}
		formatter.VerboseLog("metrics written to %s", cfg.Metrics.Textfile)
	}

	if runErr != nil {
		// Rows measured before the failure are still worth showing.
		if opts.Format != "json" && len(report.Rows) > 0 {
			fmt.Fprint(formatter.Writer, report.Table())
		}
		if errors.Is(runErr, context.Canceled) {
			return formatter.Fail(ExitFailure, ErrCodeRun, "benchmark interrupted", runErr)
		}
		return formatter.Fail(ExitFailure, ErrCodeRun, "benchmark failed", runErr)
	}

	formatter.VerboseLog("suite %s: %d run(s)", report.SuiteID, len(report.Rows))
	if opts.Format == "json" {
		return formatter.Success(BenchResult{
			Report:          report,
			Database:        cfg.Results.Database,
			MetricsTextfile: cfg.Metrics.Textfile,
		})
	}

	fmt.Fprint(formatter.Writer, report.Table())
	return nil
}
