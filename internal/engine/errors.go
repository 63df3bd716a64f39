package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNoWorkers is returned when Run is given no sequences.
	ErrNoWorkers = errors.New("no worker sequences")

	// ErrTooManyWorkers is returned when more sequences are supplied than
	// the configured worker limit. Running with fewer workers than
	// requested would silently skew the timing comparison, so the run is
	// refused instead.
	ErrTooManyWorkers = errors.New("worker limit exceeded")

	// ErrNilTarget is returned when Run is given no store.
	ErrNilTarget = errors.New("nil target")
)

// WorkerError reports a worker that terminated abnormally.
//
// The worker was still joined; the run is reported as failed so that a
// partially executed trace never produces a timing.
type WorkerError struct {
	// Worker is the index of the failed worker's sequence.
	Worker int

	// Op is the index of the operation that was executing.
	Op int

	// Panic is the recovered value. It is nil when Exited is set.
	Panic any

	// Exited is set when the worker goroutine ended without panicking
	// before finishing its sequence (runtime.Goexit).
	Exited bool
}

// Error implements the error interface.
func (e *WorkerError) Error() string {
	if e.Exited {
		return fmt.Sprintf("worker %d exited before completing at op %d", e.Worker, e.Op)
	}
	return fmt.Sprintf("worker %d panicked at op %d: %v", e.Worker, e.Op, e.Panic)
}

// IsWorkerError returns true if err is or wraps a *WorkerError.
func IsWorkerError(err error) bool {
	var we *WorkerError
	return errors.As(err, &we)
}
