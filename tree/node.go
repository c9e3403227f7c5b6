package tree

// Node owns a KV record and up to two child Links. Heights live on the
// Link, not the Node, so a parent's balance factor never requires
// dereferencing a child.
type Node struct {
	kv    KV
	Left  *Link
	Right *Link
}

// New creates a leaf node (no children) from a key and value.
func New(key, value []byte) (*Node, error) {
	kv, err := NewKV(key, value)
	if err != nil {
		return nil, err
	}
	return &Node{kv: kv}, nil
}

// FromKV wraps an already-built KV as a leaf node.
func FromKV(kv KV) *Node {
	return &Node{kv: kv}
}

// Key returns the node's key.
func (n *Node) Key() []byte { return n.kv.Key() }

// Value returns the node's value.
func (n *Node) Value() []byte { return n.kv.Value() }

// KV returns the node's kv record.
func (n *Node) KV() KV { return n.kv }

// KVHash returns the node's cached kv hash.
func (n *Node) KVHash() Hash { return n.kv.Hash() }

// SetValue replaces the node's value in place and recomputes its kv hash.
func (n *Node) SetValue(value []byte) error {
	kv, err := n.kv.WithValue(value)
	if err != nil {
		return err
	}
	n.kv = kv
	return nil
}

// ChildLink returns the Link on the given side, or nil if absent.
func (n *Node) ChildLink(left bool) *Link {
	if left {
		return n.Left
	}
	return n.Right
}

func (n *Node) setChildLink(left bool, link *Link) {
	if left {
		n.Left = link
	} else {
		n.Right = link
	}
}

// ChildHeight returns the cached height of the child on the given side,
// or 0 if absent.
func (n *Node) ChildHeight(left bool) uint8 {
	if l := n.ChildLink(left); l != nil {
		return l.Height()
	}
	return 0
}

// Height returns the node's own height: one more than its taller child,
// or 1 if it has no children.
func (n *Node) Height() uint8 {
	lh, rh := n.ChildHeight(true), n.ChildHeight(false)
	if lh > rh {
		return lh + 1
	}
	return rh + 1
}

// BalanceFactor is right child height minus left child height. The AVL
// invariant requires this to be in [-1, 1] on every node of a tree
// returned by the batch engine.
func (n *Node) BalanceFactor() int8 {
	return int8(n.ChildHeight(false)) - int8(n.ChildHeight(true))
}

// Hash computes the node hash recursively: H(kv_hash || left_hash ||
// right_hash), substituting NullHash for absent children. All Links
// involved must be non-Modified; callers that might hold Modified links
// (i.e. anything before Commit) must not call Hash.
func (n *Node) Hash() Hash {
	left, right := NullHash, NullHash
	if n.Left != nil {
		left = n.Left.HashOf()
	}
	if n.Right != nil {
		right = n.Right.HashOf()
	}
	return NodeHash(n.kv.Hash(), left, right)
}

// AsLink builds a Link describing n as seen from a prospective parent:
// a Loaded link carrying n's current hash, height, and key, with n
// itself attached as the in-memory child.
func (n *Node) AsLink() *Link {
	return &Link{
		Kind:        LinkLoaded,
		Hash:        n.Hash(),
		LeftHeight:  n.ChildHeight(true),
		RightHeight: n.ChildHeight(false),
		Key:         n.Key(),
		Child:       n,
	}
}

// IsLeaf reports whether n has no children in memory or by reference.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// clone returns a shallow copy of n suitable for copy-on-write mutation:
// the KV and link pointers are shared, but mutating the copy's own Left
// or Right fields (e.g. during rotation) never affects the original.
func (n *Node) clone() *Node {
	c := *n
	return &c
}

// attach sets the child link on the given side to a freshly-built
// Modified link wrapping child (or clears it if child is nil), marking n
// itself dirty by returning a clone with the new link installed.
func (n *Node) attach(left bool, child *Node) *Node {
	c := n.clone()
	if child == nil {
		c.setChildLink(left, nil)
		return c
	}
	c.setChildLink(left, NewModifiedLink(child))
	return c
}
