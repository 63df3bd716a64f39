package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertGolden compares a report against golden files.
// The canonical JSON summary is stored in testdata/golden/{name}.golden and
// the rendered table in testdata/golden/{name}_table.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Timings only match across runs when the suite was driven by a fixed
// clock and ID generator.
func AssertGolden(t *testing.T, name string, report *Report) error {
	t.Helper()

	summary, err := report.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, summary)
	g.Assert(t, name+"_table", []byte(report.Table()))

	return nil
}
