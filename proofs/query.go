package proofs

import (
	"bytes"
	"sort"

	"github.com/jaiminpan/avlkv/tree"
)

// QueryItem is a single key or range of keys to include in a proof.
// The zero value is not valid; build one with Key, Rng, or RngInclusive.
type QueryItem struct {
	lower          []byte
	upper          []byte
	upperInclusive bool
}

// Key builds a QueryItem matching exactly one key.
func Key(key []byte) QueryItem {
	return QueryItem{lower: key, upper: key, upperInclusive: true}
}

// Rng builds a QueryItem matching the half-open range [start, end).
func Rng(start, end []byte) QueryItem {
	return QueryItem{lower: start, upper: end, upperInclusive: false}
}

// RngInclusive builds a QueryItem matching the closed range [start, end].
func RngInclusive(start, end []byte) QueryItem {
	return QueryItem{lower: start, upper: end, upperInclusive: true}
}

// LowerBound returns the item's inclusive lower bound.
func (q QueryItem) LowerBound() []byte { return q.lower }

// UpperBound returns the item's upper bound and whether it's inclusive.
func (q QueryItem) UpperBound() ([]byte, bool) { return q.upper, q.upperInclusive }

// Contains reports whether key falls within the item's bounds.
func (q QueryItem) Contains(key []byte) bool {
	if bytes.Compare(key, q.lower) < 0 {
		return false
	}
	cmp := bytes.Compare(key, q.upper)
	return cmp < 0 || (cmp == 0 && q.upperInclusive)
}

// merge combines two overlapping items into the widest-covering range.
func (q QueryItem) merge(other QueryItem) QueryItem {
	start := q.lower
	if bytes.Compare(other.lower, start) < 0 {
		start = other.lower
	}
	end, inclusive := q.upper, q.upperInclusive
	ocmp := bytes.Compare(other.upper, end)
	if ocmp > 0 || (ocmp == 0 && other.upperInclusive && !inclusive) {
		end, inclusive = other.upper, other.upperInclusive
	}
	return QueryItem{lower: start, upper: end, upperInclusive: inclusive}
}

// compare orders two items, treating any pair that overlaps at all
// (including a key landing inside a range) as equal -- this is what lets
// Query.Insert dedup/merge colliding items the way an ordered set would.
func (q QueryItem) compare(other QueryItem) int {
	cmpLU := bytes.Compare(q.lower, other.upper)
	cmpUL := bytes.Compare(q.upper, other.lower)

	switch {
	case cmpLU < 0 && cmpUL < 0:
		return -1
	case cmpLU < 0 && cmpUL == 0:
		if q.upperInclusive {
			return 0
		}
		return -1
	case cmpLU < 0 && cmpUL > 0:
		return 0
	case cmpLU == 0:
		if other.upperInclusive {
			return 0
		}
		return 1
	default: // cmpLU > 0
		return 1
	}
}

// compareKey orders a node's own key against the item the same way
// compare orders two items, treating the key as a single-point item.
func (q QueryItem) compareKey(key []byte) int {
	return q.compare(Key(key))
}

// Query is a minimal, non-overlapping, sorted set of QueryItems. Insert
// operations are the only supported mutation; the builder consumes the
// result via Items.
type Query struct {
	items []QueryItem
}

// NewQuery returns an empty Query.
func NewQuery() *Query { return &Query{} }

// InsertKey adds a single key to the query.
func (q *Query) InsertKey(key []byte) { q.InsertItem(Key(key)) }

// InsertRange adds a half-open range to the query.
func (q *Query) InsertRange(start, end []byte) { q.InsertItem(Rng(start, end)) }

// InsertRangeInclusive adds a closed range to the query.
func (q *Query) InsertRangeInclusive(start, end []byte) { q.InsertItem(RngInclusive(start, end)) }

// InsertItem adds item to the query, merging it with any colliding
// existing items so the set stays minimal and non-overlapping.
func (q *Query) InsertItem(item QueryItem) {
	merged := true
	for merged {
		merged = false
		for i, existing := range q.items {
			if item.compare(existing) == 0 {
				item = item.merge(existing)
				q.items = append(q.items[:i], q.items[i+1:]...)
				merged = true
				break
			}
		}
	}
	idx := sort.Search(len(q.items), func(i int) bool {
		return q.items[i].compare(item) >= 0
	})
	q.items = append(q.items, QueryItem{})
	copy(q.items[idx+1:], q.items[idx:])
	q.items[idx] = item
}

// Items returns the query's sorted, merged item list.
func (q *Query) Items() []QueryItem { return append([]QueryItem(nil), q.items...) }

// Len reports the number of items in the query.
func (q *Query) Len() int { return len(q.items) }

// builder generates a minimal proof for a sorted, merged query against
// an in-memory tree, fetching unresident children through its walker.
type builder struct {
	walker *tree.Walker
}

// CreateProof builds a proof for query against the subtree rooted at
// node. Returns the op sequence plus (leftAbsence, rightAbsence): whether
// the query's range extends past the subtree's left or right edge into
// territory the proof attests is empty.
func CreateProof(node *tree.Node, fetch tree.Fetch, query []QueryItem) ([]Op, bool, bool, error) {
	if node == nil {
		if len(query) == 0 {
			return nil, false, false, nil
		}
		return nil, true, true, nil
	}
	b := &builder{walker: tree.NewWalker(fetch)}
	ops, leftAbsence, rightAbsence, err := b.createProof(node, query)
	return ops, leftAbsence, rightAbsence, err
}

func (b *builder) createProof(node *tree.Node, query []QueryItem) ([]Op, bool, bool, error) {
	key := node.Key()
	idx, exact := searchQuery(query, key)

	var leftItems, rightItems []QueryItem
	if exact {
		item := query[idx]
		leftEnd := idx
		if bytes.Compare(item.LowerBound(), key) < 0 {
			leftEnd = idx + 1
		}
		leftItems = query[:leftEnd]

		rightStart := idx + 1
		upper, _ := item.UpperBound()
		if bytes.Compare(upper, key) > 0 {
			rightStart = idx
		}
		rightItems = query[rightStart:]
	} else {
		leftItems = query[:idx]
		rightItems = query[idx:]
	}

	leftProof, leftAbsLeft, leftAbsRight, err := b.createChildProof(node, true, leftItems)
	if err != nil {
		return nil, false, false, err
	}
	rightProof, rightAbsLeft, rightAbsRight, err := b.createChildProof(node, false, rightItems)
	if err != nil {
		return nil, false, false, err
	}

	hasLeft, hasRight := len(leftProof) > 0, len(rightProof) > 0

	var thisPush Op
	if exact {
		thisPush = Push(PushKV(node.Key(), node.Value()))
	} else if leftAbsRight || rightAbsLeft {
		thisPush = Push(PushKV(node.Key(), node.Value()))
	} else {
		thisPush = Push(PushKVHash(node.KVHash()))
	}

	proof := append([]Op(nil), leftProof...)
	proof = append(proof, thisPush)
	if hasLeft {
		proof = append(proof, Parent())
	}
	if hasRight {
		proof = append(proof, rightProof...)
		proof = append(proof, Child())
	}

	return proof, leftAbsLeft, rightAbsRight, nil
}

// createChildProof recurses into the child on the given side, or (if the
// sub-batch is empty but the child exists) emits a single opaque Hash
// push so the verifier can reconstruct this node's hash without
// descending.
func (b *builder) createChildProof(node *tree.Node, left bool, query []QueryItem) ([]Op, bool, bool, error) {
	if len(query) > 0 {
		child, err := b.walker.Walk(node, left)
		if err != nil {
			return nil, false, false, err
		}
		if child == nil {
			return nil, true, true, nil
		}
		return b.createProof(child, query)
	}
	link := node.ChildLink(left)
	if link == nil {
		return nil, false, false, nil
	}
	return []Op{Push(PushHash(link.HashOf()))}, false, false, nil
}

// searchQuery finds the position where key would sort among query's
// lower bounds, returning (index, true) if an item in query actually
// contains key.
func searchQuery(query []QueryItem, key []byte) (int, bool) {
	idx := sort.Search(len(query), func(i int) bool {
		return query[i].compareKey(key) >= 0
	})
	if idx < len(query) && query[idx].compareKey(key) == 0 {
		return idx, true
	}
	return idx, false
}
