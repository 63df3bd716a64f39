package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/slotbench/internal/fieldstore"
	"github.com/roach88/slotbench/internal/ir"
	"github.com/roach88/slotbench/internal/trace"
)

// Scenario defines one benchmark configuration: a store size, an operation
// mix, and the worker counts to measure it at.
type Scenario struct {
	// Name identifies the scenario in reports and the results log.
	Name string `yaml:"name" json:"name"`

	// Description explains what the mix exercises.
	Description string `yaml:"description" json:"description"`

	// Slots is the store size. Zero means fieldstore.DefaultSlots.
	Slots int `yaml:"slots,omitempty" json:"slots,omitempty"`

	// OpsPerWorker is the trace length of every worker. Zero means the
	// suite default.
	OpsPerWorker int `yaml:"ops_per_worker,omitempty" json:"ops_per_worker,omitempty"`

	// Threads lists the worker counts to run, in report column order.
	Threads []int `yaml:"threads" json:"threads"`

	// Seed feeds the trace generator.
	Seed uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`

	// FilePrefix names trace files when the suite writes them.
	// Defaults to the lower-cased name followed by '_'.
	FilePrefix string `yaml:"file_prefix,omitempty" json:"file_prefix,omitempty"`

	// Mix is the operation distribution.
	Mix []ShapeSpec `yaml:"mix" json:"mix"`
}

// ShapeSpec is the file form of a trace.Shape.
type ShapeSpec struct {
	// Op is "read", "write" or "string" ("snapshot" is accepted too).
	Op     string  `yaml:"op" json:"op"`
	Slot   int     `yaml:"slot,omitempty" json:"slot,omitempty"`
	Value  int64   `yaml:"value,omitempty" json:"value,omitempty"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// scenarioFields are the accepted top-level keys, for strict CUE decoding.
var scenarioFields = []string{
	"name", "description", "slots", "ops_per_worker", "threads", "seed", "file_prefix", "mix",
}

// shapeFields are the accepted keys of a mix entry.
var shapeFields = []string{"op", "slot", "value", "weight"}

// SlotCount returns the effective store size.
func (s *Scenario) SlotCount() int {
	if s.Slots == 0 {
		return fieldstore.DefaultSlots
	}
	return s.Slots
}

// Prefix returns the effective trace file prefix.
func (s *Scenario) Prefix() string {
	if s.FilePrefix != "" {
		return s.FilePrefix
	}
	return strings.ToLower(s.Name) + "_"
}

// MaxThreads returns the largest worker count.
func (s *Scenario) MaxThreads() int {
	if len(s.Threads) == 0 {
		return 0
	}
	return slices.Max(s.Threads)
}

// TraceMix converts the mix to its runtime form.
func (s *Scenario) TraceMix() (trace.Mix, error) {
	mix := make(trace.Mix, len(s.Mix))
	for i, sh := range s.Mix {
		kind, err := ir.ParseOpKind(sh.Op)
		if err != nil {
			return nil, &trace.MixError{Index: i, Reason: err.Error()}
		}
		mix[i] = trace.Shape{Op: kind, Slot: sh.Slot, Value: sh.Value, Weight: sh.Weight}
	}
	return mix, nil
}

// Hash returns a content hash of everything that determines the traces.
func (s *Scenario) Hash(opsPerWorker int) (string, error) {
	shapes := make([]any, len(s.Mix))
	for i, sh := range s.Mix {
		kind, err := ir.ParseOpKind(sh.Op)
		if err != nil {
			return "", err
		}
		shapes[i] = []any{kind, sh.Slot, sh.Value, weightKey(sh.Weight)}
	}
	return ir.ContentHash(ir.DomainScenario, map[string]any{
		"name":           s.Name,
		"slots":          s.SlotCount(),
		"ops_per_worker": opsPerWorker,
		"seed":           fmt.Sprintf("%d", s.Seed),
		"mix":            shapes,
	})
}

// weightKey renders a weight for hashing; canonical JSON carries no floats.
func weightKey(w float64) string {
	return fmt.Sprintf("%g", w)
}

// shapesFromMix converts a runtime mix to its file form.
func shapesFromMix(mix trace.Mix) []ShapeSpec {
	specs := make([]ShapeSpec, len(mix))
	for i, sh := range mix {
		specs[i] = ShapeSpec{Op: sh.Op.String(), Slot: sh.Slot, Value: sh.Value, Weight: sh.Weight}
	}
	return specs
}

// DefaultScenarios returns the built-in suite: the Specific, Equal and
// Random mixes over two slots, each at 1, 2 and 3 workers.
func DefaultScenarios(opsPerWorker int) []Scenario {
	build := func(name, desc, prefix string, mix trace.Mix) Scenario {
		return Scenario{
			Name:         name,
			Description:  desc,
			Slots:        fieldstore.DefaultSlots,
			OpsPerWorker: opsPerWorker,
			Threads:      []int{1, 2, 3},
			FilePrefix:   prefix,
			Mix:          shapesFromMix(mix),
		}
	}
	return []Scenario{
		build("Specific", "read-heavy on slot 0 with frequent snapshots", "var", trace.SpecificMix),
		build("Equal", "every operation shape equally likely", "equal_", trace.EqualMix),
		build("Random", "writes only, split across both slots", "random_", trace.RandomMix),
	}
}

// LoadScenario reads a scenario from a .yaml, .yml or .cue file.
// Unknown fields are rejected in both formats.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario *Scenario
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		scenario, err = parseYAML(data)
	case ".cue":
		scenario, err = parseCUE(data, path)
	default:
		return nil, fmt.Errorf("unsupported scenario format %q (want .yaml, .yml or .cue)", ext)
	}
	if err != nil {
		return nil, err
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// LoadScenarios loads every path in order, stopping at the first failure.
func LoadScenarios(paths []string) ([]Scenario, error) {
	scenarios := make([]Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, *s)
	}
	return scenarios, nil
}

func parseYAML(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

func parseCUE(data []byte, path string) (*Scenario, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %s", cueerrors.Details(err, nil))
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %s", cueerrors.Details(err, nil))
	}

	if err := checkCUEFields(v, scenarioFields, ""); err != nil {
		return nil, err
	}
	mix := v.LookupPath(cue.ParsePath("mix"))
	if mix.Exists() {
		iter, err := mix.List()
		if err != nil {
			return nil, fmt.Errorf("failed to parse CUE: mix: %w", err)
		}
		for i := 0; iter.Next(); i++ {
			if err := checkCUEFields(iter.Value(), shapeFields, fmt.Sprintf("mix[%d].", i)); err != nil {
				return nil, err
			}
		}
	}

	var scenario Scenario
	if err := v.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to decode CUE: %s", cueerrors.Details(err, nil))
	}
	return &scenario, nil
}

// checkCUEFields rejects labels outside known.
func checkCUEFields(v cue.Value, known []string, prefix string) error {
	iter, err := v.Fields()
	if err != nil {
		return fmt.Errorf("failed to parse CUE: %sexpected a struct: %w", prefix, err)
	}
	for iter.Next() {
		if label := iter.Selector().String(); !slices.Contains(known, label) {
			return fmt.Errorf("failed to parse CUE: unknown field %s%s", prefix, label)
		}
	}
	return nil
}

// Validate applies the checks LoadScenario runs on a parsed file. Use it on
// scenarios built in code.
func (s *Scenario) Validate() error {
	return validateScenario(s)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Slots < 0 {
		return fmt.Errorf("slots must be non-negative, got %d", s.Slots)
	}

	if s.OpsPerWorker < 0 {
		return fmt.Errorf("ops_per_worker must be non-negative, got %d", s.OpsPerWorker)
	}

	if len(s.Threads) == 0 {
		return fmt.Errorf("threads list is required and must be non-empty")
	}
	for i, n := range s.Threads {
		if n < 1 {
			return fmt.Errorf("threads[%d]: worker count must be at least 1, got %d", i, n)
		}
	}

	if len(s.Mix) == 0 {
		return fmt.Errorf("mix list is required and must be non-empty")
	}
	for i, sh := range s.Mix {
		if sh.Op == "" {
			return fmt.Errorf("mix[%d]: op is required", i)
		}
	}

	mix, err := s.TraceMix()
	if err != nil {
		return err
	}
	return mix.Validate(s.SlotCount())
}
