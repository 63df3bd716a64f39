// Package harness runs benchmark scenarios and reports their timings.
//
// # Scenario Format
//
// Scenarios are YAML or CUE files with the following structure:
//
//	name: Specific
//	description: "read-heavy on slot 0 with frequent snapshots"
//	slots: 2
//	ops_per_worker: 1000000
//	threads: [1, 2, 3]
//	seed: 42
//	file_prefix: var
//	mix:
//	  - { op: read,   slot: 0,           weight: 40 }
//	  - { op: write,  slot: 0, value: 1, weight: 5 }
//	  - { op: read,   slot: 1,           weight: 5 }
//	  - { op: write,  slot: 1, value: 1, weight: 5 }
//	  - { op: string,                    weight: 45 }
//
// Unknown keys are rejected. slots, ops_per_worker, seed and file_prefix
// are optional.
//
// # Execution
//
// For each scenario the suite generates one trace per worker at the
// largest worker count, then for every entry of threads builds a fresh
// store, replays the first k traces through engine.Run and records a Row.
// Rows go to any configured Recorder as they are measured.
//
// # Deterministic Testing
//
// With testutil.StepClock and testutil.SequentialIDGenerator a suite run is
// byte-for-byte reproducible, which AssertGolden relies on.
package harness
