package proofs

import "github.com/jaiminpan/avlkv/tree"

// Child is a link from a ProofTree to one of its children: either a
// fully materialized subtree, or (after collapsing) just its hash.
type Child struct {
	Tree *ProofTree // nil once collapsed
	Hash tree.Hash
}

// ProofTree is an in-memory tree reconstructed while executing a proof
// op stream. Unlike tree.Node it carries no backing-store link: every
// child is either fully present (Tree non-nil) or collapsed to an
// opaque hash.
type ProofTree struct {
	Node  Node
	Left  *Child
	Right *Child

	height uint8
}

// NewProofTree wraps a leaf Node (no children yet) as a ProofTree.
func NewProofTree(n Node) *ProofTree {
	return &ProofTree{Node: n, height: 1}
}

// Height returns the subtree's height as tracked during proof
// execution (1 for the childless push, growing by the taller child's
// height as Attach is called).
func (t *ProofTree) Height() uint8 { return t.height }

// childHash returns the hash of the child on the given side, or the
// null hash if absent.
func (t *ProofTree) childHash(left bool) tree.Hash {
	c := t.Left
	if !left {
		c = t.Right
	}
	if c == nil {
		return tree.NullHash
	}
	return c.Hash
}

// Hash computes the node hash this ProofTree implies: H(kv_hash ||
// left_hash || right_hash), mirroring tree.Node.Hash.
func (t *ProofTree) Hash() tree.Hash {
	return tree.NodeHash(t.Node.kvHash(), t.childHash(true), t.childHash(false))
}

// Attach installs child on the given side. Returns AttachError if that
// side is already occupied. Updates height and caches the child's hash
// so later Hash calls don't need to walk back down.
func (t *ProofTree) Attach(left bool, child *ProofTree) error {
	existing := t.Left
	if !left {
		existing = t.Right
	}
	if existing != nil {
		return &AttachError{Left: left}
	}
	c := &Child{Tree: child, Hash: child.Hash()}
	if left {
		t.Left = c
	} else {
		t.Right = c
	}
	if h := child.height + 1; h > t.height {
		t.height = h
	}
	return nil
}

// child returns the ProofTree attached on the given side, or nil if
// absent or already collapsed to a bare hash.
func (t *ProofTree) child(left bool) *ProofTree {
	c := t.Left
	if !left {
		c = t.Right
	}
	if c == nil {
		return nil
	}
	return c.Tree
}

// IntoHash collapses t to a bare Node carrying its own computed hash,
// discarding its children. Used by the verifier's collapse mode to
// keep memory at O(log n).
func (t *ProofTree) IntoHash() Node {
	return PushHash(t.Hash())
}

// VisitNodes performs an in-order traversal of t, calling visit on
// every resident node's payload (not on collapsed-away children).
func (t *ProofTree) VisitNodes(visit func(Node)) {
	if left := t.child(true); left != nil {
		left.VisitNodes(visit)
	}
	visit(t.Node)
	if right := t.child(false); right != nil {
		right.VisitNodes(visit)
	}
}

// VisitRefs is like VisitNodes but passes each visited ProofTree itself
// rather than just its payload, so the callback can inspect the node's
// Left/Right children -- used by the Restorer to turn each verified
// node into a stored record with Reference links.
func (t *ProofTree) VisitRefs(visit func(node *ProofTree)) {
	if left := t.child(true); left != nil {
		left.VisitRefs(visit)
	}
	visit(t)
	if right := t.child(false); right != nil {
		right.VisitRefs(visit)
	}
}

// Layer returns, in left-to-right order, every ProofTree node at the
// given depth below t (t itself is depth 0). Used by the chunk
// Restorer to extract a trunk's leaf-level hashes without a
// general-purpose traversal.
func (t *ProofTree) Layer(depth int) []*ProofTree {
	var out []*ProofTree
	var walk func(n *ProofTree, d int)
	walk = func(n *ProofTree, d int) {
		if n == nil {
			return
		}
		if d == depth {
			out = append(out, n)
			return
		}
		walk(n.child(true), d+1)
		walk(n.child(false), d+1)
	}
	walk(t, 0)
	return out
}

// Execute runs an op stream against a fresh stack, invoking visit for
// every node pushed (in push order, which for a correctly built proof
// is the in-order key sequence). When collapse is true, every
// completed ProofTree (one with both Attach calls resolved, i.e. one
// that has been consumed as a child by a Parent/Child op) is
// immediately reduced to a bare hash node before continuing, bounding
// memory to O(log n) regardless of proof size.
//
// On success, returns the single remaining stack item's ProofTree.
func Execute(ops []Op, collapse bool, visit func(Node) error) (*ProofTree, error) {
	var stack []*ProofTree
	var lastKV []byte
	haveLastKV := false

	pop := func(opName string) (*ProofTree, error) {
		if len(stack) == 0 {
			return nil, &StackUnderflowError{Op: opName}
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top, nil
	}

	for _, op := range ops {
		switch op.Kind {
		case OpPush:
			if op.Node.Kind == NodeKV {
				if haveLastKV && bytesCompare(op.Node.Key, lastKV) <= 0 {
					return nil, &KeyOrderError{Key: op.Node.Key, Prev: lastKV}
				}
				lastKV = op.Node.Key
				haveLastKV = true
			}
			if visit != nil {
				if err := visit(op.Node); err != nil {
					return nil, err
				}
			}
			stack = append(stack, NewProofTree(op.Node))

		case OpParent:
			parent, err := pop("Parent")
			if err != nil {
				return nil, err
			}
			child, err := pop("Parent")
			if err != nil {
				return nil, err
			}
			if err := parent.Attach(true, child); err != nil {
				return nil, err
			}
			if collapse {
				parent.Left.Tree = nil
			}
			stack = append(stack, parent)

		case OpChild:
			child, err := pop("Child")
			if err != nil {
				return nil, err
			}
			parent, err := pop("Child")
			if err != nil {
				return nil, err
			}
			if err := parent.Attach(false, child); err != nil {
				return nil, err
			}
			if collapse {
				parent.Right.Tree = nil
			}
			stack = append(stack, parent)
		}
	}

	if len(stack) != 1 {
		return nil, &ProofError{Reason: "execution did not reduce to a single root"}
	}
	return stack[0], nil
}

// bytesCompare avoids importing "bytes" solely for this one comparison
// in a file otherwise free of it.
func bytesCompare(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
