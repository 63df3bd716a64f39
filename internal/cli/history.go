package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/slotbench/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	SuiteID  string
	Scenario string
	Threads  int
	Limit    int
	Suites   bool
	RunID    string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show runs recorded in the results log",
		Long: `List runs from the SQLite results log written by "bench --db".

Runs are listed oldest first. --limit keeps only the most recent runs.
--suites lists recorded suites instead, and --run shows one run with its
per-worker counters.

Examples:
  slotbench history --db ./results.db
  slotbench history --db ./results.db --scenario Equal --threads 2
  slotbench history --db ./results.db --suites --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().String("db", "", "path to SQLite results log")
	bindFlag(cmd.Flags(), "db", "results.database")
	cmd.Flags().StringVar(&opts.SuiteID, "suite", "", "only runs of this suite")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "only runs of this scenario")
	cmd.Flags().IntVar(&opts.Threads, "threads", 0, "only runs with this many workers")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "only the most recent N runs")
	cmd.Flags().BoolVar(&opts.Suites, "suites", false, "list suites instead of runs")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a single run")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions, cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}
	path := cfg.Results.Database
	if path == "" {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "no results database: set --db or results.database", nil)
	}
	// store.Open would create an empty log; a typo should not.
	if _, err := os.Stat(path); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "results database not found", err)
	}

	st, err := store.Open(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open results database", err)
	}
	defer st.Close()

	switch {
	case opts.RunID != "":
		run, err := st.GetRun(ctx, opts.RunID)
		if errors.Is(err, store.ErrNotFound) {
			return formatter.Fail(ExitFailure, ErrCodeDatabase, fmt.Sprintf("run %s not found", opts.RunID), nil)
		}
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read run", err)
		}
		if opts.Format == "json" {
			return formatter.Success(run)
		}
		outputRunText(formatter, run)
		return nil

	case opts.Suites:
		suites, err := st.ListSuites(ctx)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to list suites", err)
		}
		if opts.Format == "json" {
			return formatter.Success(suites)
		}
		outputSuitesText(formatter, suites)
		return nil
	}

	runs, err := st.ListRuns(ctx, store.Filter{
		SuiteID:  opts.SuiteID,
		Scenario: opts.Scenario,
		Threads:  opts.Threads,
		Limit:    opts.Limit,
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to list runs", err)
	}
	if opts.Format == "json" {
		return formatter.Success(runs)
	}
	outputRunsText(formatter, runs)
	return nil
}

func outputRunsText(formatter *OutputFormatter, runs []store.Run) {
	w := formatter.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return
	}

	fmt.Fprintf(w, "%6s  %-36s  %-20s  %7s  %12s  %14s\n",
		"Seq", "Suite", "Scenario", "Threads", "Ops/worker", "Elapsed (s)")
	for _, r := range runs {
		fmt.Fprintf(w, "%6d  %-36s  %-20s  %7d  %12d  %14.6f\n",
			r.Seq, r.SuiteID, r.Scenario, r.Threads, r.OpsPerWorker, r.Elapsed.Seconds())
	}
}

func outputSuitesText(formatter *OutputFormatter, suites []store.SuiteSummary) {
	w := formatter.Writer
	if len(suites) == 0 {
		fmt.Fprintln(w, "No suites found.")
		return
	}

	for _, s := range suites {
		fmt.Fprintf(w, "%s  %d run(s)  %s\n", s.SuiteID, s.Runs, strings.Join(s.Scenarios, ", "))
	}
}

func outputRunText(formatter *OutputFormatter, run store.Run) {
	w := formatter.Writer
	fmt.Fprintf(w, "Run %s (suite %s)\n", run.ID, run.SuiteID)
	fmt.Fprintf(w, "  Scenario:   %s\n", run.Scenario)
	fmt.Fprintf(w, "  Threads:    %d\n", run.Threads)
	fmt.Fprintf(w, "  Operations: %d (%d per worker)\n", run.TotalOps, run.OpsPerWorker)
	fmt.Fprintf(w, "  Elapsed:    %.6f s\n", run.Elapsed.Seconds())
	fmt.Fprintf(w, "  Snapshot:   %s\n", run.Snapshot)
	fmt.Fprintf(w, "  Trace hash: %s\n", run.TraceHash)
	fmt.Fprintf(w, "  Version:    %s\n", run.ToolVersion)
	for i, s := range run.Workers {
		fmt.Fprintf(w, "  worker %d: %s, %d executed, %d read, %d write, %d snapshot\n",
			i, s.State, s.Executed, s.Reads, s.Writes, s.Snapshots)
	}
}

