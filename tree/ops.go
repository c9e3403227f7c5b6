package tree

import (
	"bytes"
	"fmt"
	"sort"
)

// Op identifies the kind of mutation a BatchEntry describes.
type Op uint8

const (
	// Put inserts or overwrites the value at a key.
	Put Op = iota
	// Delete removes a key. Deleting an absent key is not an error.
	Delete
)

// BatchEntry is a single keyed mutation within a Batch.
type BatchEntry struct {
	Key   []byte
	Op    Op
	Value []byte
}

// Batch is an ordered list of mutations to apply in one pass. Callers
// must supply it sorted by strictly increasing Key; ApplyTo rejects
// anything else rather than silently sorting, so that the caller's
// assumption about which of two writes to the same key "wins" a batch
// is never quietly violated.
type Batch []BatchEntry

func checkBatch(batch Batch) error {
	for i := 1; i < len(batch); i++ {
		if bytes.Compare(batch[i-1].Key, batch[i].Key) >= 0 {
			return ErrNotSorted
		}
	}
	return nil
}

// ApplyTo applies batch to root, returning the new root (nil if the
// resulting tree is empty) and the list of keys that were deleted, in
// ascending key order. root may be nil (an
// empty tree). fetch resolves any Reference link the walk needs to
// cross; pass tree.PanicSource{} for a tree known to be fully resident.
func ApplyTo(root *Node, batch Batch, fetch Fetch) (*Node, [][]byte, error) {
	if err := checkBatch(batch); err != nil {
		return root, nil, err
	}
	return ApplyToUnchecked(root, batch, fetch)
}

// ApplyToUnchecked is ApplyTo without the sorted/unique precondition
// check. Callers take on the obligation themselves; passing a batch
// that isn't sorted by strictly increasing key is undefined behavior
// (the engine's binary searches will silently misbehave rather than
// error).
func ApplyToUnchecked(root *Node, batch Batch, fetch Fetch) (*Node, [][]byte, error) {
	if len(batch) == 0 {
		return root, nil, nil
	}
	a := &applier{walker: NewWalker(fetch)}
	newRoot, err := a.applyTo(root, batch)
	if err != nil {
		return nil, nil, err
	}
	return newRoot, a.deleted, nil
}

// applier carries the mutable state threaded through one ApplyTo call:
// the walker used to cross Reference links, and the accumulated list of
// deleted keys.
type applier struct {
	walker  *Walker
	deleted [][]byte
}

func (a *applier) applyTo(node *Node, batch Batch) (*Node, error) {
	if len(batch) == 0 {
		return node, nil
	}
	if node == nil {
		return a.build(batch)
	}
	return a.apply(node, batch)
}

// build constructs a fresh subtree from a batch applied to an empty
// tree, using the batch's midpoint as the new root so the result is
// balanced regardless of input order.
func (a *applier) build(batch Batch) (*Node, error) {
	if len(batch) == 0 {
		return nil, nil
	}
	mid := len(batch) / 2
	entry := batch[mid]
	if entry.Op == Delete {
		left, err := a.build(batch[:mid])
		if err != nil {
			return nil, err
		}
		if left != nil {
			return a.apply(left, batch[mid+1:])
		}
		return a.build(batch[mid+1:])
	}
	node, err := New(entry.Key, entry.Value)
	if err != nil {
		return nil, err
	}
	return a.recurse(node, batch, mid, true)
}

// apply applies batch to an existing node, splitting the batch around
// whichever entry (if any) matches the node's own key.
func (a *applier) apply(node *Node, batch Batch) (*Node, error) {
	idx, found := findKey(batch, node.Key())
	if found {
		entry := batch[idx]
		switch entry.Op {
		case Put:
			node = node.clone()
			if err := node.SetValue(entry.Value); err != nil {
				return nil, err
			}
			return a.recurse(node, batch, idx, true)
		case Delete:
			key := append([]byte(nil), node.Key()...)
			newNode, err := a.removeNode(node)
			if err != nil {
				return nil, err
			}
			newNode, err = a.applyTo(newNode, batch[:idx])
			if err != nil {
				return nil, err
			}
			a.deleted = append(a.deleted, key)
			newNode, err = a.applyTo(newNode, batch[idx+1:])
			if err != nil {
				return nil, err
			}
			return newNode, nil
		default:
			return nil, fmt.Errorf("tree: invalid op %d", entry.Op)
		}
	}
	node = node.clone()
	return a.recurse(node, batch, idx, false)
}

// findKey returns the index of the entry matching key (if any), and the
// index batch would be split at otherwise (the first entry greater than
// key, or len(batch)).
func findKey(batch Batch, key []byte) (int, bool) {
	idx := sort.Search(len(batch), func(i int) bool {
		return bytes.Compare(batch[i].Key, key) >= 0
	})
	if idx < len(batch) && bytes.Equal(batch[idx].Key, key) {
		return idx, true
	}
	return idx, false
}

// recurse applies the portions of batch falling on either side of mid to
// node's children, reattaches the results, and rebalances. When
// exclusive is true, the entry at mid itself was already consumed by the
// caller (it named node's own key); otherwise mid is simply a split
// point with no entry of its own claimed.
func (a *applier) recurse(node *Node, batch Batch, mid int, exclusive bool) (*Node, error) {
	leftBatch := batch[:mid]
	var rightBatch Batch
	if exclusive {
		rightBatch = batch[mid+1:]
	} else {
		rightBatch = batch[mid:]
	}

	if len(leftBatch) > 0 {
		child, err := a.walker.Detach(node, true)
		if err != nil {
			return nil, err
		}
		newChild, err := a.applyTo(child, leftBatch)
		if err != nil {
			return nil, err
		}
		node = node.attach(true, newChild)
	}
	if len(rightBatch) > 0 {
		child, err := a.walker.Detach(node, false)
		if err != nil {
			return nil, err
		}
		newChild, err := a.applyTo(child, rightBatch)
		if err != nil {
			return nil, err
		}
		node = node.attach(false, newChild)
	}
	return a.maybeBalance(node)
}

// removeNode removes node from the tree it roots, returning the
// replacement subtree. A node with zero or one children is replaced by
// that child directly; a node with two children is replaced by the edge
// (extreme) node of its taller child, promoted up and reattached to the
// opposite child.
func (a *applier) removeNode(node *Node) (*Node, error) {
	left, err := a.walker.Detach(node, true)
	if err != nil {
		return nil, err
	}
	right, err := a.walker.Detach(node, false)
	if err != nil {
		return nil, err
	}
	switch {
	case left == nil && right == nil:
		return nil, nil
	case left == nil:
		return right, nil
	case right == nil:
		return left, nil
	}

	var newRoot *Node
	if left.Height() >= right.Height() {
		edge, remainder, err := a.removeEdge(left, false)
		if err != nil {
			return nil, err
		}
		newRoot = edge
		newRoot = newRoot.attach(true, remainder)
		newRoot = newRoot.attach(false, right)
	} else {
		edge, remainder, err := a.removeEdge(right, true)
		if err != nil {
			return nil, err
		}
		newRoot = edge
		newRoot = newRoot.attach(true, left)
		newRoot = newRoot.attach(false, remainder)
	}
	return a.maybeBalance(newRoot)
}

// removeEdge walks toward the extreme node on the given side (the
// leftmost node if toward is true, the rightmost if false), detaches it,
// and returns it along with the rebalanced remainder of the subtree it
// was pulled from.
func (a *applier) removeEdge(node *Node, toward bool) (*Node, *Node, error) {
	child, err := a.walker.Detach(node, toward)
	if err != nil {
		return nil, nil, err
	}
	if child == nil {
		opposite, err := a.walker.Detach(node, !toward)
		if err != nil {
			return nil, nil, err
		}
		return node, opposite, nil
	}
	edge, newChild, err := a.removeEdge(child, toward)
	if err != nil {
		return nil, nil, err
	}
	node = node.attach(toward, newChild)
	node, err = a.maybeBalance(node)
	if err != nil {
		return nil, nil, err
	}
	return edge, node, nil
}

// rotate promotes node's child on the given side to be the new root of
// this subtree, the standard single AVL rotation.
func (a *applier) rotate(node *Node, promoteLeft bool) (*Node, error) {
	pivot, err := a.walker.Detach(node, promoteLeft)
	if err != nil {
		return nil, err
	}
	middle, err := a.walker.Detach(pivot, !promoteLeft)
	if err != nil {
		return nil, err
	}
	node = node.attach(promoteLeft, middle)
	pivot = pivot.attach(!promoteLeft, node)
	return pivot, nil
}

// maybeBalance restores the AVL invariant at node, performing a single
// or double rotation if its balance factor has drifted outside [-1, 1].
func (a *applier) maybeBalance(node *Node) (*Node, error) {
	balance := node.BalanceFactor()
	if balance >= -1 && balance <= 1 {
		return node, nil
	}
	if balance < -1 {
		left, err := a.walker.Walk(node, true)
		if err != nil {
			return nil, err
		}
		if left.BalanceFactor() > 0 {
			rotatedLeft, err := a.rotate(left, false)
			if err != nil {
				return nil, err
			}
			node = node.attach(true, rotatedLeft)
		}
		return a.rotate(node, true)
	}
	right, err := a.walker.Walk(node, false)
	if err != nil {
		return nil, err
	}
	if right.BalanceFactor() < 0 {
		rotatedRight, err := a.rotate(right, true)
		if err != nil {
			return nil, err
		}
		node = node.attach(false, rotatedRight)
	}
	return a.rotate(node, false)
}
