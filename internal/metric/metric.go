// Package metric exposes suite results as Prometheus metrics.
//
// Each Registry owns its own prometheus.Registry, so nothing is registered
// globally. After a suite, WriteTextfile dumps the metrics in the
// node_exporter textfile format.
package metric

import (
	"context"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/slotbench/internal/harness"
	"github.com/roach88/slotbench/internal/ir"
)

// Registry records suite rows as metrics.
type Registry struct {
	reg *prometheus.Registry

	runsTotal    *prometheus.CounterVec
	elapsed      *prometheus.GaugeVec
	opsPerSecond *prometheus.GaugeVec
	duration     *prometheus.HistogramVec
	opsTotal     *prometheus.CounterVec
}

// NewRegistry creates a registry with every slotbench metric registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slotbench_runs_total",
			Help: "Measured runs by scenario and worker count",
		}, []string{"scenario", "threads"}),
		elapsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "slotbench_run_elapsed_seconds",
			Help: "Wall-clock time of the most recent run, spawn to join",
		}, []string{"scenario", "threads"}),
		opsPerSecond: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "slotbench_run_ops_per_second",
			Help: "Operations per second across all workers of the most recent run",
		}, []string{"scenario", "threads"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "slotbench_run_duration_seconds",
			Help:    "Distribution of run wall-clock times",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
		}, []string{"scenario"}),
		opsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slotbench_ops_total",
			Help: "Operations executed by kind",
		}, []string{"kind"}),
	}

	r.reg.MustRegister(r.runsTotal, r.elapsed, r.opsPerSecond, r.duration, r.opsTotal)
	r.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "slotbench_build_info",
		Help:        "Constant 1, labelled with the tool version",
		ConstLabels: prometheus.Labels{"version": ir.ToolVersion},
	}, func() float64 { return 1 }))

	return r
}

// Record implements harness.Recorder.
func (r *Registry) Record(_ context.Context, row harness.Row) error {
	threads := strconv.Itoa(row.Threads)
	seconds := row.Elapsed.Seconds()

	r.runsTotal.WithLabelValues(row.Scenario, threads).Inc()
	r.elapsed.WithLabelValues(row.Scenario, threads).Set(seconds)
	r.duration.WithLabelValues(row.Scenario).Observe(seconds)
	if seconds > 0 {
		r.opsPerSecond.WithLabelValues(row.Scenario, threads).Set(float64(row.TotalOps) / seconds)
	}

	var reads, writes, snapshots int
	for _, w := range row.Workers {
		reads += w.Reads
		writes += w.Writes
		snapshots += w.Snapshots
	}
	r.opsTotal.WithLabelValues(ir.OpRead.String()).Add(float64(reads))
	r.opsTotal.WithLabelValues(ir.OpWrite.String()).Add(float64(writes))
	r.opsTotal.WithLabelValues(ir.OpSnapshot.String()).Add(float64(snapshots))
	return nil
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteTextfile writes all metrics to path atomically.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
