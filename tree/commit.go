package tree

import "fmt"

// Committer receives the post-order stream of nodes produced by Commit
// and decides, for each one, whether its children should be pruned back
// to Reference links afterward.
type Committer interface {
	// Write persists node's current encoding. By the time Write is
	// called, every link on node is non-Modified, so node.Hash() and
	// node.Encode() are both valid.
	Write(node *Node) error
	// Prune is asked once per child link immediately after the parent's
	// Write returns, and reports whether that child should be dropped
	// back to a Reference link (freeing its in-memory subtree) now that
	// it's durable. depth is the child's own depth below the commit
	// root (the root's direct children are depth 1). A false answer
	// keeps the child resident, e.g. to satisfy a "keep top N levels"
	// retention policy.
	Prune(link *Link, depth int) bool
}

// Commit walks node post-order, finalizing every Modified link into a
// Loaded one (recomputing hashes bottom-up, since a parent can't hash
// until its children are stable) and calling committer.Write on each
// node as soon as its own hash is known. After a node is written,
// committer.Prune is consulted for each of its children to decide
// whether to collapse that subtree back to a Reference link.
func Commit(node *Node, committer Committer) error {
	if node == nil {
		return nil
	}
	return commit(node, committer, 0)
}

func commit(node *Node, committer Committer, depth int) error {
	for _, left := range [2]bool{true, false} {
		link := node.ChildLink(left)
		if link == nil || link.Kind != LinkModified {
			continue
		}
		if err := commit(link.Child, committer, depth+1); err != nil {
			return err
		}
		node.setChildLink(left, link.Child.AsLink())
	}

	if err := committer.Write(node); err != nil {
		return fmt.Errorf("tree: writing node %x: %w", node.Key(), err)
	}

	for _, left := range [2]bool{true, false} {
		link := node.ChildLink(left)
		if link == nil || link.Kind == LinkReference {
			continue
		}
		if committer.Prune(link, depth+1) {
			node.setChildLink(left, &Link{
				Kind:        LinkReference,
				Hash:        link.Hash,
				LeftHeight:  link.LeftHeight,
				RightHeight: link.RightHeight,
				Key:         link.Key,
			})
		}
	}
	return nil
}
