package harness

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/slotbench/internal/ir"
)

// Column widths of the results table.
const (
	nameWidth = 20
	cellWidth = 15
)

// Table renders the report as a fixed-width text table: a header line
// naming the trace length, then one line per scenario with elapsed
// seconds per worker count. Missing cells print as "-".
func (r *Report) Table() string {
	var b strings.Builder
	p := message.NewPrinter(language.English)

	if r.MixedOps {
		b.WriteString("Test running with varying operations per thread.\n")
	} else {
		p.Fprintf(&b, "Test running with %d operations per thread.\n", r.OpsPerWorker)
	}

	fmt.Fprintf(&b, "%*s", nameWidth, "Scenario")
	for _, k := range r.Threads {
		fmt.Fprintf(&b, "%*s", cellWidth, threadsLabel(k))
	}
	b.WriteByte('\n')

	for _, name := range r.Scenarios() {
		fmt.Fprintf(&b, "%*s", nameWidth, name)
		for _, k := range r.Threads {
			row, ok := r.Lookup(name, k)
			if !ok {
				fmt.Fprintf(&b, "%*s", cellWidth, "-")
				continue
			}
			fmt.Fprintf(&b, "%*.6f", cellWidth, row.Elapsed.Seconds())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func threadsLabel(k int) string {
	if k == 1 {
		return "1 Thread"
	}
	return strconv.Itoa(k) + " Threads"
}

// toCanonicalMap converts the report to a map[string]any for canonical JSON
// serialization. Worker counters are left out.
func (r *Report) toCanonicalMap() map[string]any {
	threads := make([]any, len(r.Threads))
	for i, k := range r.Threads {
		threads[i] = k
	}

	rows := make([]any, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = map[string]any{
			"id":             row.ID,
			"suite_id":       row.SuiteID,
			"scenario":       row.Scenario,
			"scenario_hash":  row.ScenarioHash,
			"threads":        row.Threads,
			"ops_per_worker": row.OpsPerWorker,
			"total_ops":      row.TotalOps,
			"elapsed_ns":     int64(row.Elapsed),
			"trace_hash":     row.TraceHash,
			"snapshot":       row.Snapshot,
		}
	}

	return map[string]any{
		"format_version": ir.FormatVersion,
		"suite_id":       r.SuiteID,
		"ops_per_worker": r.OpsPerWorker,
		"mixed_ops":      r.MixedOps,
		"threads":        threads,
		"rows":           rows,
	}
}

// MarshalCanonical returns the report summary as canonical JSON.
func (r *Report) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(r.toCanonicalMap())
}
