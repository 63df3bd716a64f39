package engine

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/roach88/slotbench/internal/ir"
)

// WorkerState is a worker's position in its lifecycle.
//
// Transitions: NotStarted → Running → Completed. A worker that panics or
// exits early ends in Failed instead of Completed. There are no suspended states; once
// running, a worker executes its whole sequence without yielding to the
// harness.
type WorkerState uint32

const (
	StateNotStarted WorkerState = iota
	StateRunning
	StateCompleted
	StateFailed
)

var workerStateNames = [...]string{
	StateNotStarted: "not_started",
	StateRunning:    "running",
	StateCompleted:  "completed",
	StateFailed:     "failed",
}

func (s WorkerState) String() string {
	if int(s) < len(workerStateNames) {
		return workerStateNames[s]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s WorkerState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *WorkerState) UnmarshalText(text []byte) error {
	state, err := ParseWorkerState(string(text))
	if err != nil {
		return err
	}
	*s = state
	return nil
}

// ParseWorkerState is the inverse of WorkerState.String.
func ParseWorkerState(name string) (WorkerState, error) {
	for i, n := range workerStateNames {
		if n == name {
			return WorkerState(i), nil
		}
	}
	return 0, fmt.Errorf("unknown worker state %q", name)
}

// WorkerStats counts what a worker did.
type WorkerStats struct {
	State WorkerState `json:"state"`

	// Executed is the number of operations carried out.
	Executed int `json:"executed"`

	Reads     int `json:"reads"`
	Writes    int `json:"writes"`
	Snapshots int `json:"snapshots"`

	// Skipped counts operations with an unknown kind.
	Skipped int `json:"skipped"`

	// Sink accumulates every value read plus the length of every snapshot.
	Sink int64 `json:"sink"`
}

// worker executes one sequence.
//
// stats and err are written only by the worker goroutine and read by Run
// after wg.Wait, which orders the accesses. state is atomic so it can be
// observed while the run is in flight.
type worker struct {
	id    int
	seq   ir.Sequence
	state atomic.Uint32
	stats WorkerStats
	err   *WorkerError
}

func newWorker(id int, seq ir.Sequence) *worker {
	return &worker{id: id, seq: seq}
}

// State returns the worker's current lifecycle state.
func (w *worker) State() WorkerState {
	return WorkerState(w.state.Load())
}

// run executes the sequence in order and signals wg on every path.
func (w *worker) run(t Target, wg *sync.WaitGroup) {
	defer wg.Done()

	op := 0
	completed := false
	defer func() {
		r := recover()
		if completed {
			return
		}
		// recover returns nil when the goroutine was ended by runtime.Goexit.
		w.err = &WorkerError{Worker: w.id, Op: op, Panic: r, Exited: r == nil}
		w.state.Store(uint32(StateFailed))
		w.stats.State = StateFailed
	}()

	w.state.Store(uint32(StateRunning))
	for ; op < len(w.seq); op++ {
		w.exec(t, w.seq[op])
	}
	completed = true
	w.state.Store(uint32(StateCompleted))
	w.stats.State = StateCompleted
}

// exec performs one operation and folds its result into the stats.
func (w *worker) exec(t Target, op ir.Operation) {
	switch op.Kind {
	case ir.OpRead:
		w.stats.Sink += t.Read(op.Slot)
		w.stats.Reads++
	case ir.OpWrite:
		t.Write(op.Slot, op.Value)
		w.stats.Writes++
	case ir.OpSnapshot:
		w.stats.Sink += int64(len(t.Snapshot()))
		w.stats.Snapshots++
	default:
		w.stats.Skipped++
		return
	}
	w.stats.Executed++
}
