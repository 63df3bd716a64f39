// Package ir provides the shared operation model for slotbench.
//
// This package contains type definitions and canonical encodings only. All
// other internal packages import ir; ir imports nothing internal. This keeps
// the operation model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Operation kinds are a closed set (Read, Write, Snapshot)
//   - Operations are immutable values; a Sequence is owned by one worker
//   - NO float types in canonical encodings - durations are int64 nanoseconds
//   - All JSON tags use snake_case
package ir
