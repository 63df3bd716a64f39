// Package engine replays worker traces concurrently against a shared store
// and measures how long the whole replay takes.
//
// ARCHITECTURE:
//
// One goroutine per sequence:
// Run spawns exactly one worker goroutine for every sequence it is given.
// Workers share the target store and nothing else. Each worker executes its
// own sequence strictly in order and never yields back to the harness; the
// only synchronization between workers is the store's per-slot locking.
//
// Timing:
//  1. Sequences are loaded and workers are constructed (not timed)
//  2. Clock read immediately before the first spawn
//  3. All workers run to completion
//  4. Clock read immediately after the last join
//
// Elapsed therefore includes goroutine spawn overhead. For short traces that
// overhead is a visible fraction of the measurement.
//
// Result consumption:
// Every read value and every snapshot length is accumulated into the
// worker's Sink, and every executed operation is counted. The counters are
// returned in the Result, which both keeps the accesses observable and lets
// callers verify that every operation ran.
//
// FAILURE MODEL:
//
// There is no retry and no cancellation. A run either completes every
// worker or fails as a whole:
//   - zero sequences, or more sequences than WithMaxWorkers allows, fail
//     before any worker is spawned
//   - a worker that panics is recovered and joined like any other; Run
//     then returns a *WorkerError instead of a timing
//
// Operations with an unknown kind are skipped and counted in
// WorkerStats.Skipped. Out-of-range slots are the store's concern.
package engine
