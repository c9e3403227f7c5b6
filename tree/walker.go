package tree

import "fmt"

// Walker is a scoped traversal helper that fetches pruned (Reference)
// children on demand via a Fetch capability. A Walker does not own any
// particular node; it's handed a node and a side and either reads or
// detaches that side's child.
//
// Read-only callers (proof generation, chunk production) use Walk, which
// opportunistically caches a fetched child on the link without changing
// its Kind away from Reference -- the link still encodes using its
// stored Hash/Key, so this is purely a same-process memoization.
//
// Mutating callers (the batch engine) use Detach/DetachExpect, which
// remove the child from the parent entirely; the caller is then the sole
// owner of the returned subtree and must reattach it (possibly modified,
// possibly not) via Node.attach or by constructing a new Link.
type Walker struct {
	fetch Fetch
}

// NewWalker creates a Walker backed by the given fetch capability.
func NewWalker(fetch Fetch) *Walker {
	if fetch == nil {
		fetch = PanicSource{}
	}
	return &Walker{fetch: fetch}
}

// Walk returns the child on the given side, fetching and caching it if
// the link was a Reference. Returns nil if there is no child.
func (w *Walker) Walk(n *Node, left bool) (*Node, error) {
	link := n.ChildLink(left)
	if link == nil {
		return nil, nil
	}
	if link.Child != nil {
		return link.Child, nil
	}
	child, err := w.fetch.FetchByKey(link.Key)
	if err != nil {
		return nil, fmt.Errorf("tree: fetching child %x: %w", link.Key, err)
	}
	link.Child = child
	return child, nil
}

// WalkExpect is Walk, but treats a missing child as an error.
func (w *Walker) WalkExpect(n *Node, left bool) (*Node, error) {
	child, err := w.Walk(n, left)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, fmt.Errorf("tree: expected child on %s side, found none", side(left))
	}
	return child, nil
}

// Detach removes and returns the child on the given side, fetching it
// first if necessary. After Detach, n has no child on that side. Returns
// nil if there was no child.
func (w *Walker) Detach(n *Node, left bool) (*Node, error) {
	child, err := w.Walk(n, left)
	if err != nil {
		return nil, err
	}
	n.setChildLink(left, nil)
	return child, nil
}

// DetachExpect is Detach, but treats a missing child as an error.
func (w *Walker) DetachExpect(n *Node, left bool) (*Node, error) {
	child, err := w.Detach(n, left)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, fmt.Errorf("tree: expected child on %s side, found none", side(left))
	}
	return child, nil
}

func side(left bool) string {
	if left {
		return "left"
	}
	return "right"
}
