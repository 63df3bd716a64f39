package trace

import (
	"fmt"
	"math"

	"github.com/roach88/slotbench/internal/ir"
)

// Shape is one outcome of a Mix: an operation template and its weight.
// Slot applies to read and write, Value to write only.
type Shape struct {
	Op     ir.OpKind `json:"op"`
	Slot   int       `json:"slot"`
	Value  int64     `json:"value"`
	Weight float64   `json:"weight"`
}

// Operation instantiates the shape.
func (s Shape) Operation() ir.Operation {
	switch s.Op {
	case ir.OpRead:
		return ir.Read(s.Slot)
	case ir.OpWrite:
		return ir.Write(s.Slot, s.Value)
	default:
		return ir.Snapshot()
	}
}

// Mix is a discrete distribution over shapes. Weights are relative and need
// not sum to anything in particular.
type Mix []Shape

// MixError describes an invalid Mix.
type MixError struct {
	// Index is the offending shape, or -1 for whole-mix problems.
	Index  int
	Reason string
}

func (e *MixError) Error() string {
	if e.Index < 0 {
		return "invalid mix: " + e.Reason
	}
	return fmt.Sprintf("invalid mix: shape[%d]: %s", e.Index, e.Reason)
}

// Total returns the sum of all weights.
func (m Mix) Total() float64 {
	var total float64
	for _, s := range m {
		total += s.Weight
	}
	return total
}

// Validate checks the mix against a store with the given slot count.
// A negative slots skips the slot range check.
func (m Mix) Validate(slots int) error {
	if len(m) == 0 {
		return &MixError{Index: -1, Reason: "no shapes"}
	}
	for i, s := range m {
		if !s.Op.Valid() {
			return &MixError{Index: i, Reason: fmt.Sprintf("unknown op %d", s.Op)}
		}
		if s.Weight < 0 || math.IsNaN(s.Weight) || math.IsInf(s.Weight, 0) {
			return &MixError{Index: i, Reason: fmt.Sprintf("weight must be a finite non-negative number, got %v", s.Weight)}
		}
		if s.Op == ir.OpSnapshot || slots < 0 {
			continue
		}
		if s.Slot < 0 || s.Slot >= slots {
			return &MixError{Index: i, Reason: fmt.Sprintf("slot %d out of range for %d slots", s.Slot, slots)}
		}
	}
	if m.Total() <= 0 {
		return &MixError{Index: -1, Reason: "total weight must be positive"}
	}
	return nil
}

// Built-in two-slot mixes. Shape order is read 0, write 0 1, read 1,
// write 1 1, string.
var (
	// SpecificMix is read-heavy on slot 0 with frequent snapshots.
	SpecificMix = twoSlotMix(40, 5, 5, 5, 45)

	// EqualMix weighs every shape the same.
	EqualMix = twoSlotMix(20, 20, 20, 20, 20)

	// RandomMix only writes, split evenly across both slots.
	RandomMix = twoSlotMix(0, 50, 0, 50, 0)
)

func twoSlotMix(read0, write0, read1, write1, snapshot float64) Mix {
	return Mix{
		{Op: ir.OpRead, Slot: 0, Weight: read0},
		{Op: ir.OpWrite, Slot: 0, Value: 1, Weight: write0},
		{Op: ir.OpRead, Slot: 1, Weight: read1},
		{Op: ir.OpWrite, Slot: 1, Value: 1, Weight: write1},
		{Op: ir.OpSnapshot, Weight: snapshot},
	}
}
