package fieldstore

import (
	"strconv"
	"strings"
	"sync"
)

// DefaultSlots is the slot count of the reference benchmark.
const DefaultSlots = 2

// noCopy may be embedded into structs which must not be copied after first
// use. go vet's copylocks check reports copies of types with Lock/Unlock.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Store is a fixed-arity set of int64 slots, each guarded by its own
// reader/writer lock.
//
// values[i] is only accessed while holding locks[i]. Both slices are sized
// once in New and never resized.
//
// Thread-safety: all methods are safe for concurrent use.
type Store struct {
	_ noCopy

	values []int64
	locks  []sync.RWMutex
}

// New creates a store with n zero-valued slots.
// A negative n is treated as 0; such a store answers every Read with 0.
func New(n int) *Store {
	if n < 0 {
		n = 0
	}
	return &Store{
		values: make([]int64, n),
		locks:  make([]sync.RWMutex, n),
	}
}

// Len returns the number of slots.
func (s *Store) Len() int {
	return len(s.values)
}

// inRange reports whether i addresses a slot.
func (s *Store) inRange(i int) bool {
	return i >= 0 && i < len(s.values)
}

// Read returns the value of slot i under its shared lock.
// Concurrent reads of the same slot proceed in parallel.
//
// Out-of-range indices return 0 without locking.
func (s *Store) Read(i int) int64 {
	if !s.inRange(i) {
		return 0
	}
	s.locks[i].RLock()
	v := s.values[i]
	s.locks[i].RUnlock()
	return v
}

// Write stores v in slot i under its exclusive lock.
//
// Out-of-range indices are a silent no-op.
func (s *Store) Write(i int, v int64) {
	if !s.inRange(i) {
		return
	}
	s.locks[i].Lock()
	s.values[i] = v
	s.locks[i].Unlock()
}

// Snapshot renders all slots as space-separated decimal integers, e.g. "1 2".
//
// Every shared lock is acquired in ascending index order before any value is
// read and held until the last value is read, so the result is a single
// point-in-time view across slots. A store with no slots renders as "".
func (s *Store) Snapshot() string {
	var b strings.Builder
	s.withAllRead(func(values []int64) {
		for i, v := range values {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.FormatInt(v, 10))
		}
	})
	return b.String()
}

// Values returns a copy of all slots, taken under the same locking
// discipline as Snapshot.
func (s *Store) Values() []int64 {
	out := make([]int64, len(s.values))
	s.withAllRead(func(values []int64) {
		copy(out, values)
	})
	return out
}

// withAllRead calls fn with every shared lock held.
// Locks are taken in ascending order and released in descending order.
func (s *Store) withAllRead(fn func(values []int64)) {
	for i := range s.locks {
		s.locks[i].RLock()
	}
	defer func() {
		for i := len(s.locks) - 1; i >= 0; i-- {
			s.locks[i].RUnlock()
		}
	}()
	fn(s.values)
}
