package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/roach88/slotbench/internal/ir"
)

// Target is the shared structure workers operate on.
// Implemented by *fieldstore.Store.
//
// Implementations must be safe for concurrent use; the engine adds no
// synchronization of its own.
type Target interface {
	Read(i int) int64
	Write(i int, v int64)
	Snapshot() string
}

// Result is the outcome of a successful run.
type Result struct {
	// Elapsed is the wall-clock time from just before the first spawn to
	// just after the last join.
	Elapsed time.Duration `json:"elapsed_ns"`

	// Workers holds per-worker counters, indexed like the input sequences.
	Workers []WorkerStats `json:"workers"`

	// TotalOps is the number of operations executed across all workers.
	TotalOps int `json:"total_ops"`
}

// config holds Run options.
type config struct {
	clock      Clock
	logger     *slog.Logger
	maxWorkers int
}

// Option configures a run.
type Option func(*config)

// WithClock sets the time source used to bracket the run.
//
// Default: SystemClock
func WithClock(c Clock) Option {
	return func(cfg *config) {
		cfg.clock = c
	}
}

// WithLogger sets the logger for run diagnostics.
//
// Default: discards all output
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}

// WithMaxWorkers caps the number of workers a run may spawn.
// Zero means no limit.
func WithMaxWorkers(n int) Option {
	return func(cfg *config) {
		cfg.maxWorkers = n
	}
}

// Run replays seqs concurrently against target, one worker per sequence,
// and returns the elapsed time plus per-worker counters.
//
// Run blocks until every worker has finished. It never returns while a
// worker goroutine is still running, on any path.
//
// Returns ErrNoWorkers, ErrTooManyWorkers or ErrNilTarget before any worker
// starts, or a *WorkerError (possibly joined with others) if a worker
// terminated abnormally. In the error case no Result is returned.
func Run(target Target, seqs []ir.Sequence, opts ...Option) (*Result, error) {
	cfg := config{
		clock:  SystemClock{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if target == nil {
		return nil, ErrNilTarget
	}
	if len(seqs) == 0 {
		return nil, ErrNoWorkers
	}
	if cfg.maxWorkers > 0 && len(seqs) > cfg.maxWorkers {
		return nil, fmt.Errorf("%w: %d requested, limit %d", ErrTooManyWorkers, len(seqs), cfg.maxWorkers)
	}
	if procs := runtime.GOMAXPROCS(0); procs < len(seqs) {
		cfg.logger.Warn("fewer processors than workers, parallelism is capped",
			"gomaxprocs", procs, "workers", len(seqs))
	}

	workers := make([]*worker, len(seqs))
	for i, seq := range seqs {
		workers[i] = newWorker(i, seq)
	}

	var wg sync.WaitGroup
	wg.Add(len(workers))

	start := cfg.clock.Now()
	for _, w := range workers {
		go w.run(target, &wg)
	}
	wg.Wait()
	elapsed := cfg.clock.Now().Sub(start)

	var errs []error
	result := &Result{
		Elapsed: elapsed,
		Workers: make([]WorkerStats, len(workers)),
	}
	for i, w := range workers {
		if w.err != nil {
			errs = append(errs, w.err)
			continue
		}
		result.Workers[i] = w.stats
		result.TotalOps += w.stats.Executed
	}
	if len(errs) > 0 {
		cfg.logger.Error("run failed", "workers", len(workers), "failed", len(errs))
		return nil, errors.Join(errs...)
	}

	cfg.logger.Debug("run complete",
		"workers", len(workers),
		"ops", result.TotalOps,
		"elapsed", elapsed)

	return result, nil
}
