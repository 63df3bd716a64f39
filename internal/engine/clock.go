package engine

import "time"

// Clock is the time source used to bracket a run.
//
// The engine only ever calls Now twice per run: once before the first
// worker is spawned and once after the last worker is joined.
// Implemented by SystemClock (production) and testutil.StepClock (tests).
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock. time.Now carries a monotonic reading,
// so elapsed times are immune to wall-clock adjustments.
//
// Thread-safety: SystemClock is stateless and safe for concurrent use.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
