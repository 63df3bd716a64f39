package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/slotbench/internal/engine"
	"github.com/roach88/slotbench/internal/fieldstore"
	"github.com/roach88/slotbench/internal/ir"
	"github.com/roach88/slotbench/internal/trace"
)

// DefaultOpsPerWorker is the trace length used when neither the scenario
// nor the suite sets one.
const DefaultOpsPerWorker = 1_000_000

// Suite runs scenarios and collects their timings.
//
// Every run gets a fresh store. Traces for a scenario are generated once
// at its largest worker count; a run with k workers replays the first k.
type Suite struct {
	clock      engine.Clock
	ids        IDGenerator
	logger     *slog.Logger
	recorders  []Recorder
	traceDir   string
	maxWorkers int
	defaultOps int
}

// SuiteOption configures a Suite.
type SuiteOption func(*Suite)

// WithClock sets the clock handed to the engine.
func WithClock(c engine.Clock) SuiteOption {
	return func(s *Suite) {
		s.clock = c
	}
}

// WithIDGenerator sets the source of suite and run IDs.
//
// Default: UUIDv7
func WithIDGenerator(g IDGenerator) SuiteOption {
	return func(s *Suite) {
		s.ids = g
	}
}

// WithLogger sets the logger for suite and engine diagnostics.
func WithLogger(l *slog.Logger) SuiteOption {
	return func(s *Suite) {
		s.logger = l
	}
}

// WithRecorder adds recorders that observe every row.
func WithRecorder(r ...Recorder) SuiteOption {
	return func(s *Suite) {
		s.recorders = append(s.recorders, r...)
	}
}

// WithTraceDir makes the suite write generated traces to dir and replay
// them from disk.
func WithTraceDir(dir string) SuiteOption {
	return func(s *Suite) {
		s.traceDir = dir
	}
}

// WithMaxWorkers caps the worker count of any single run. Zero disables
// the cap.
func WithMaxWorkers(n int) SuiteOption {
	return func(s *Suite) {
		s.maxWorkers = n
	}
}

// WithDefaultOps sets the trace length for scenarios that leave
// ops_per_worker unset.
func WithDefaultOps(n int) SuiteOption {
	return func(s *Suite) {
		s.defaultOps = n
	}
}

// NewSuite creates a suite.
func NewSuite(opts ...SuiteOption) *Suite {
	s := &Suite{
		ids:        uuidGenerator{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		defaultOps: DefaultOpsPerWorker,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// uuidGenerator produces time-ordered UUIDv7 strings.
type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Run executes every scenario in order.
//
// ctx is checked between runs; a run in progress is never interrupted.
// On error the report holds the rows measured so far.
func (s *Suite) Run(ctx context.Context, scenarios []Scenario) (*Report, error) {
	report := &Report{SuiteID: s.ids.Generate()}

	s.logger.Info("suite started", "suite_id", report.SuiteID, "scenarios", len(scenarios))
	for i := range scenarios {
		if err := s.runScenario(ctx, report, &scenarios[i]); err != nil {
			return report, fmt.Errorf("scenario %q: %w", scenarios[i].Name, err)
		}
	}
	s.logger.Info("suite finished", "suite_id", report.SuiteID, "rows", len(report.Rows))

	return report, nil
}

// Sequences generates the traces for a scenario at its largest worker
// count, using the suite default trace length when the scenario has none.
func (s *Suite) Sequences(sc *Scenario) ([]ir.Sequence, int, error) {
	if err := validateScenario(sc); err != nil {
		return nil, 0, fmt.Errorf("invalid scenario: %w", err)
	}
	ops := sc.OpsPerWorker
	if ops == 0 {
		ops = s.defaultOps
	}

	mix, err := sc.TraceMix()
	if err != nil {
		return nil, 0, err
	}
	gen, err := trace.NewGenerator(mix, sc.Seed)
	if err != nil {
		return nil, 0, err
	}
	return gen.Sequences(sc.MaxThreads(), ops), ops, nil
}

func (s *Suite) runScenario(ctx context.Context, report *Report, sc *Scenario) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	seqs, ops, err := s.Sequences(sc)
	if err != nil {
		return err
	}
	s.logger.Debug("traces generated",
		"scenario", sc.Name,
		"workers", len(seqs),
		"ops_per_worker", ops,
	)

	if s.traceDir != "" {
		paths, err := trace.WriteFiles(s.traceDir, sc.Prefix(), seqs)
		if err != nil {
			return err
		}
		var stats trace.Stats
		seqs, stats, err = trace.LoadFiles(paths)
		if err != nil {
			return err
		}
		s.logger.Debug("traces reloaded",
			"scenario", sc.Name,
			"dir", s.traceDir,
			"ops", stats.Ops,
			"dropped", stats.Dropped,
		)
	}

	scenarioHash, err := sc.Hash(ops)
	if err != nil {
		return err
	}
	workerHashes, err := sequenceHashes(seqs)
	if err != nil {
		return err
	}

	for _, k := range sc.Threads {
		if err := ctx.Err(); err != nil {
			return err
		}

		row, err := s.measure(sc, seqs[:k])
		if err != nil {
			return fmt.Errorf("%d workers: %w", k, err)
		}
		row.SuiteID = report.SuiteID
		row.ScenarioHash = scenarioHash
		row.OpsPerWorker = ops
		row.TraceHash, err = ir.ContentHash(ir.DomainSequence, workerHashes[:k])
		if err != nil {
			return err
		}

		report.Add(row)
		s.logger.Info("run measured",
			"scenario", row.Scenario,
			"threads", row.Threads,
			"elapsed", row.Elapsed,
			"total_ops", row.TotalOps,
		)

		for _, rec := range s.recorders {
			if err := rec.Record(ctx, row); err != nil {
				return fmt.Errorf("record run %s: %w", row.ID, err)
			}
		}
	}
	return nil
}

// measure runs seqs against a fresh store.
func (s *Suite) measure(sc *Scenario, seqs []ir.Sequence) (Row, error) {
	st := fieldstore.New(sc.SlotCount())

	opts := []engine.Option{
		engine.WithLogger(s.logger),
		engine.WithMaxWorkers(s.maxWorkers),
	}
	if s.clock != nil {
		opts = append(opts, engine.WithClock(s.clock))
	}

	res, err := engine.Run(st, seqs, opts...)
	if err != nil {
		return Row{}, err
	}

	return Row{
		ID:       s.ids.Generate(),
		Scenario: sc.Name,
		Threads:  len(seqs),
		TotalOps: res.TotalOps,
		Elapsed:  res.Elapsed,
		Snapshot: st.Snapshot(),
		Workers:  res.Workers,
	}, nil
}

// sequenceHashes hashes each worker's sequence on its own so prefixes can
// be identified without rehashing.
func sequenceHashes(seqs []ir.Sequence) ([]string, error) {
	hashes := make([]string, len(seqs))
	for i, seq := range seqs {
		h, err := ir.SequenceHash([]ir.Sequence{seq})
		if err != nil {
			return nil, err
		}
		hashes[i] = h
	}
	return hashes, nil
}
