package proofs

import (
	"bytes"
	"sort"
)

// mapEntry pairs a proven value with whether it was contiguous with the
// entry immediately preceding it in proof push order (no abridged Hash
// or KVHash push intervened).
type mapEntry struct {
	key        []byte
	value      []byte
	contiguous bool
}

// MapBuilder accumulates the KV nodes pushed while executing a proof,
// in push order, and tracks whether the proof's right edge was left
// unabridged. Feed it to Execute as the visit callback, then call Build.
type MapBuilder struct {
	entries   []mapEntry
	rightEdge bool
}

// NewMapBuilder returns an empty MapBuilder. The right edge starts
// proven: nothing has been abridged before the first push, so the
// builder's implicit predecessor is the true start of keyspace.
func NewMapBuilder() *MapBuilder { return &MapBuilder{rightEdge: true} }

// Insert records one proof-pushed node. KV nodes are added to the map;
// Hash/KVHash nodes only clear the right-edge flag, marking that
// whatever comes next is not provably contiguous with what came before.
func (b *MapBuilder) Insert(n Node) error {
	if n.Kind != NodeKV {
		b.rightEdge = false
		return nil
	}
	if len(b.entries) > 0 {
		prev := b.entries[len(b.entries)-1]
		if bytes.Compare(n.Key, prev.key) <= 0 {
			return &KeyOrderError{Key: n.Key, Prev: prev.key}
		}
	}
	b.entries = append(b.entries, mapEntry{key: n.Key, value: n.Value, contiguous: b.rightEdge})
	b.rightEdge = true
	return nil
}

// Build consumes the builder and returns the finished Map.
func (b *MapBuilder) Build() *Map {
	return &Map{entries: b.entries, rightEdge: b.rightEdge}
}

// Map stores the key/value data extracted from a verified proof, along
// with enough contiguity information to detect when a requested key or
// range was not actually proven (as opposed to simply absent).
type Map struct {
	entries   []mapEntry // sorted by key
	rightEdge bool
}

func (m *Map) find(key []byte) (int, bool) {
	idx := sort.Search(len(m.entries), func(i int) bool {
		return bytes.Compare(m.entries[i].key, key) >= 0
	})
	if idx < len(m.entries) && bytes.Equal(m.entries[idx].key, key) {
		return idx, true
	}
	return idx, false
}

// Get returns the value for key, or (nil, false, nil) if the proof
// establishes the key is absent from the tree. Returns a BoundError if
// the proof doesn't reach far enough to prove absence against the
// tree's right edge, or a MissingDataError if it reaches far enough
// but has an internal gap bracketing the key.
func (m *Map) Get(key []byte) ([]byte, bool, error) {
	if idx, ok := m.find(key); ok {
		return m.entries[idx].value, true, nil
	}

	idx, _ := m.find(key)
	// idx is where key would be inserted: absence is proven only if the
	// entry at idx (the first key > the queried key) is contiguous with
	// its predecessor, or if idx is past the end and the right edge of
	// the tree was proven unabridged.
	if idx >= len(m.entries) {
		if !m.rightEdge {
			return nil, false, &BoundError{Reason: "proof does not reach the right edge of the tree"}
		}
		return nil, false, nil
	}
	if !m.entries[idx].contiguous {
		return nil, false, &MissingDataError{Reason: "proof does not prove absence of the queried key"}
	}
	return nil, false, nil
}

// Range iterates the proven entries whose key is in [start, end) (a nil
// end means unbounded). It returns a MissingDataError as soon as it
// detects a gap in proof coverage within the requested range, or a
// BoundError if the proof doesn't reach far enough to prove the
// range's end.
func (m *Map) Range(start, end []byte) ([][2][]byte, error) {
	startIdx := 0
	if start != nil {
		startIdx, _ = m.find(start)
	}

	var out [][2][]byte
	var prevKey []byte
	haveStart := start != nil

	i := startIdx
	for ; i < len(m.entries); i++ {
		e := m.entries[i]
		if end != nil && bytes.Compare(e.key, end) >= 0 {
			break
		}
		skipExclusionCheck := haveStart && prevKey == nil && bytes.Equal(e.key, start)
		if !skipExclusionCheck && !e.contiguous {
			return nil, &MissingDataError{Reason: "gap in proof coverage within requested range"}
		}
		out = append(out, [2][]byte{e.key, e.value})
		prevKey = e.key
	}

	excluded := false
	switch {
	case end == nil:
		excluded = !m.rightEdge
	case i < len(m.entries):
		if !m.entries[i].contiguous {
			return nil, &MissingDataError{Reason: "gap in proof coverage within requested range"}
		}
	default:
		excluded = !m.rightEdge
	}
	if excluded {
		return nil, &BoundError{Reason: "proof does not prove the end of the requested range"}
	}
	return out, nil
}
