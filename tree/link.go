package tree

import "fmt"

// LinkKind identifies which of the four states a Link is in.
type LinkKind uint8

const (
	// LinkReference refers to a child that is not in memory: only its
	// hash, heights, and key are known. Fetched on demand via a Walker.
	LinkReference LinkKind = iota
	// LinkModified refers to a child that is in memory but whose hash has
	// not been recomputed since the last mutation. It is a programming
	// error to ask for the hash of a Modified link.
	LinkModified
	// LinkUncommitted refers to a child that is in memory, has a known
	// hash, but is not yet durable.
	LinkUncommitted
	// LinkLoaded refers to a child that is in memory and durable.
	LinkLoaded
)

func (k LinkKind) String() string {
	switch k {
	case LinkReference:
		return "Reference"
	case LinkModified:
		return "Modified"
	case LinkUncommitted:
		return "Uncommitted"
	case LinkLoaded:
		return "Loaded"
	default:
		return fmt.Sprintf("LinkKind(%d)", uint8(k))
	}
}

// Link is a typed reference to a child node. The referent's own children's
// heights are cached on the link itself (not read by dereferencing the
// child), so a grandparent's balance factor can be computed without
// loading anything. LeftHeight/RightHeight are the heights of the
// *referent's* left and right children, matching the two-byte
// left_child_heights/right_child_heights fields of the encoded record.
type Link struct {
	Kind LinkKind

	// Hash is the child's node hash. Meaningless (and never read) when
	// Kind is LinkModified.
	Hash Hash

	// LeftHeight and RightHeight are the cached heights of the
	// referent's own left and right children (0 if absent).
	LeftHeight  uint8
	RightHeight uint8

	// Key is the child's user key. Always known, even for Reference
	// links, since it's what a Walker uses to fetch the child from the
	// backing store.
	Key []byte

	// Child is the in-memory subtree, non-nil unless Kind is
	// LinkReference. A Reference link may also carry a Child that
	// Walker.Walk fetched and cached without changing its Kind.
	Child *Node

	// PendingWrites counts writes not yet flushed below this link: 1 for
	// this child plus the sum of its own children's PendingWrites. Only
	// meaningful for LinkModified links.
	PendingWrites int
}

// Height is the height of the link's referent: one more than its taller
// child, computed from the cached LeftHeight/RightHeight.
func (l *Link) Height() uint8 {
	if l.LeftHeight > l.RightHeight {
		return l.LeftHeight + 1
	}
	return l.RightHeight + 1
}

// NewModifiedLink builds a Modified link wrapping an in-memory subtree
// that has just been created or mutated.
func NewModifiedLink(child *Node) *Link {
	pending := 1
	if l := child.Left; l != nil && l.Kind == LinkModified {
		pending += l.PendingWrites
	}
	if r := child.Right; r != nil && r.Kind == LinkModified {
		pending += r.PendingWrites
	}
	return &Link{
		Kind:          LinkModified,
		LeftHeight:    child.ChildHeight(true),
		RightHeight:   child.ChildHeight(false),
		Key:           child.Key(),
		Child:         child,
		PendingWrites: pending,
	}
}

// HashOf returns the link's hash. Panics if the link is Modified: per
// spec, computing a hash through a Modified link is a programming error
// (its children have not been finalized yet).
func (l *Link) HashOf() Hash {
	if l.Kind == LinkModified {
		panic("tree: cannot read hash of a Modified link")
	}
	return l.Hash
}

// IsReference reports whether the link's child has not been loaded into
// memory.
func (l *Link) IsReference() bool { return l.Kind == LinkReference }
