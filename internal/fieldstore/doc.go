// Package fieldstore provides the shared, per-slot locked structure that
// slotbench workers contend on.
//
// A Store holds a fixed number of int64 slots. Every slot has its own
// sync.RWMutex, so operations on different slots never contend:
//
//	slot:  [0]      [1]      ... [n-1]
//	lock:  RWMutex  RWMutex  ... RWMutex
//
// # Operations
//
//   - Read takes the shared lock of one slot.
//   - Write takes the exclusive lock of one slot.
//   - Snapshot takes the shared lock of every slot in ascending index order,
//     reads all values, then releases. No single-slot operation ever holds
//     more than one lock, so the fixed order is what keeps any future
//     multi-slot operation deadlock-free.
//
// # Out-of-range indices
//
// Read and Write bounds-check their index. An out-of-range Read returns 0 and
// an out-of-range Write does nothing. Neither takes a lock or reports an
// error. This is part of the contract, not an error path: traces may name
// slots the store does not have and the benchmark keeps running.
//
// # Lifecycle
//
// A Store is created fresh for every benchmark run and must not be copied
// after first use. It is not persisted.
package fieldstore
