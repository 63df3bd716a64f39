// Package store provides the SQLite-backed results log.
//
// Every measured run is appended to the runs table together with one
// worker_stats row per worker. The log is append-only: a run ID that is
// already present is silently ignored, so re-recording a suite is
// harmless.
//
// # Ordering
//
// Runs are ordered by seq, the insertion counter, never by wall time.
// All list queries use ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// # Database Configuration
//
//   - WAL mode: history reads while a suite is recording
//   - synchronous=NORMAL
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: worker_stats rows require their run
//
// The store only ever holds results. The benchmark's shared store lives in
// memory and is never persisted.
package store
