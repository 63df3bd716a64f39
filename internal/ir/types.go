package ir

import (
	"fmt"
	"strconv"
)

// OpKind identifies what an Operation does to the shared store.
// The set is closed: the trace loader never produces any other kind.
type OpKind uint8

const (
	// OpRead reads a single slot under its shared lock.
	OpRead OpKind = iota
	// OpWrite writes a single slot under its exclusive lock.
	OpWrite
	// OpSnapshot renders every slot while holding all shared locks.
	OpSnapshot
)

// opKindNames maps kinds to their trace keywords.
// Snapshot is spelled "string" in trace files.
var opKindNames = [...]string{
	OpRead:     "read",
	OpWrite:    "write",
	OpSnapshot: "string",
}

// String returns the trace keyword for the kind.
func (k OpKind) String() string {
	if int(k) < len(opKindNames) {
		return opKindNames[k]
	}
	return "OpKind(" + strconv.Itoa(int(k)) + ")"
}

// Valid reports whether k is one of the known kinds.
func (k OpKind) Valid() bool {
	return int(k) < len(opKindNames)
}

// MarshalText implements encoding.TextMarshaler so kinds read naturally in
// JSON and YAML output.
func (k OpKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid op kind %d", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *OpKind) UnmarshalText(text []byte) error {
	kind, err := ParseOpKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseOpKind parses a trace keyword. "snapshot" is accepted as an alias of
// "string" for scenario files.
func ParseOpKind(s string) (OpKind, error) {
	switch s {
	case "read":
		return OpRead, nil
	case "write":
		return OpWrite, nil
	case "string", "snapshot":
		return OpSnapshot, nil
	default:
		return 0, fmt.Errorf("unknown op kind %q", s)
	}
}

// Operation is a single step in a worker's trace.
//
// Slot is meaningful for Read and Write only. Value is meaningful for
// Write only. Operations are plain values and never mutated after
// construction.
type Operation struct {
	Kind  OpKind `json:"kind"`
	Slot  int    `json:"slot"`
	Value int64  `json:"value"`
}

// Read returns a read of slot i.
func Read(i int) Operation {
	return Operation{Kind: OpRead, Slot: i}
}

// Write returns a write of v to slot i.
func Write(i int, v int64) Operation {
	return Operation{Kind: OpWrite, Slot: i, Value: v}
}

// Snapshot returns a whole-store snapshot. Slot is -1 as a marker that it
// does not apply.
func Snapshot() Operation {
	return Operation{Kind: OpSnapshot, Slot: -1}
}

// String renders the operation in trace line form.
func (op Operation) String() string {
	switch op.Kind {
	case OpRead:
		return "read " + strconv.Itoa(op.Slot)
	case OpWrite:
		return "write " + strconv.Itoa(op.Slot) + " " + strconv.FormatInt(op.Value, 10)
	default:
		return op.Kind.String()
	}
}

// Sequence is the ordered list of operations assigned to exactly one worker
// for exactly one run. It is read-only once handed to the engine.
type Sequence []Operation

// Counts returns how many operations of each kind the sequence contains.
func (s Sequence) Counts() (reads, writes, snapshots int) {
	for _, op := range s {
		switch op.Kind {
		case OpRead:
			reads++
		case OpWrite:
			writes++
		case OpSnapshot:
			snapshots++
		}
	}
	return reads, writes, snapshots
}

// TotalLen returns the sum of the lengths of seqs.
func TotalLen(seqs []Sequence) int {
	n := 0
	for _, s := range seqs {
		n += len(s)
	}
	return n
}
