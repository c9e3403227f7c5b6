// Package db defines the backing key-value store contract the tree and
// proofs packages are built against, plus two implementations: an
// in-memory MemDB for tests and tooling, and a Badger-backed store for
// production use.
package db

import "errors"

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("db: key not found")

// KeyValueReader wraps the read side of a backing data store.
type KeyValueReader interface {
	// Has reports whether key is present.
	Has(key []byte) (bool, error)
	// Get retrieves the value stored under key, or ErrNotFound.
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter wraps the write side of a backing data store.
type KeyValueWriter interface {
	// Put stores value under key, replacing any existing value.
	Put(key, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key []byte) error
}

// Batcher creates write-only batches that stage changes for atomic
// application.
type Batcher interface {
	NewBatch() Batch
}

// Batch accumulates writes and applies them atomically on Commit. A
// batch must not be used concurrently, and is not safe for reuse after
// Commit without a Reset.
type Batch interface {
	KeyValueWriter

	// Len reports the number of operations queued so far.
	Len() int
	// Commit flushes the queued operations to the host store.
	Commit() error
	// Reset discards any queued operations, readying the batch for reuse.
	Reset()
}

// Snapshotter creates a point-in-time, read-only view of the store that
// is insulated from subsequent writes.
type Snapshotter interface {
	NewSnapshot() (Snapshot, error)
}

// Snapshot is a read-only, point-in-time view of the store.
type Snapshot interface {
	KeyValueReader
	// NewIterator returns an iterator over [start, end) as of this
	// snapshot. A nil end means "no upper bound".
	NewIterator(start, end []byte) Iterator
	// Release frees any resources held by the snapshot. After Release,
	// the snapshot and any iterators derived from it must not be used.
	Release()
}

// Iterator walks a key range in ascending key order.
type Iterator interface {
	// Next advances the iterator and reports whether a value is
	// available. Must be called before the first Key/Value access.
	Next() bool
	// Key returns the current key. Only valid after a true Next.
	Key() []byte
	// Value returns the current value. Only valid after a true Next.
	Value() []byte
	// Error returns any error encountered during iteration.
	Error() error
	// Release frees any resources held by the iterator.
	Release()
}

// KeyValueStore is the full backing-store contract the rest of this
// module is written against: point reads/writes, atomic batches, and
// consistent snapshots for iteration and proof generation.
type KeyValueStore interface {
	KeyValueReader
	KeyValueWriter
	Batcher
	Snapshotter

	// Close releases any resources (file handles, background
	// goroutines) held by the store.
	Close() error
}

// rootKey is the reserved backing-store key under which a store's
// current Merkle root link is recorded. The NUL padding on both sides
// makes a collision with an ordinary user key unlikely and keeps it
// visually and sortically distinct in a debugger or CLI dump; nothing
// in this module rejects a user key equal to it.
var rootKey = []byte("\x00\x00root\x00\x00")

// RootKey returns the reserved key under which the tree root pointer is
// stored, exported so that callers building their own KeyValueStore
// wrapper (e.g. a namespacing layer) know which key to special-case.
func RootKey() []byte { return append([]byte(nil), rootKey...) }
