package tree

import "fmt"

// String renders a shallow, single-process view of n: children with an
// in-memory node (including Reference children a Walker has cached) are
// expanded; the rest are shown as their stored hash without being
// fetched.
func (n *Node) String() string { return n.fstring("") }

func (n *Node) fstring(ind string) string {
	resp := fmt.Sprintf("%s%x=%x\n", ind, n.Key(), n.Value())
	resp += fmt.Sprintf("%s L: %s\n", ind, linkFstring(n.Left, ind+"  "))
	resp += fmt.Sprintf("%s R: %s\n", ind, linkFstring(n.Right, ind+"  "))
	return resp
}

func linkFstring(l *Link, ind string) string {
	if l == nil {
		return "<nil>"
	}
	if l.Child != nil {
		return l.Child.fstring(ind)
	}
	return fmt.Sprintf("<%s %x>", l.Kind, l.Hash.Bytes())
}

// Dump renders the full subtree rooted at node, fetching every Reference
// child along the way so nothing is left abbreviated. Intended for
// tests and operator tooling, not production logging -- it pulls the
// entire tree into memory.
func Dump(node *Node, fetch Fetch) (string, error) {
	if node == nil {
		return "<empty>\n", nil
	}
	w := NewWalker(fetch)
	return dump(w, node, "")
}

func dump(w *Walker, node *Node, ind string) (string, error) {
	resp := fmt.Sprintf("%s%x=%x (h=%d)\n", ind, node.Key(), node.Value(), node.Height())

	left, err := w.Walk(node, true)
	if err != nil {
		return "", fmt.Errorf("tree: dumping left subtree of %x: %w", node.Key(), err)
	}
	if left != nil {
		child, err := dump(w, left, ind+"  ")
		if err != nil {
			return "", err
		}
		resp += fmt.Sprintf("%s L:\n%s", ind, child)
	}

	right, err := w.Walk(node, false)
	if err != nil {
		return "", fmt.Errorf("tree: dumping right subtree of %x: %w", node.Key(), err)
	}
	if right != nil {
		child, err := dump(w, right, ind+"  ")
		if err != nil {
			return "", err
		}
		resp += fmt.Sprintf("%s R:\n%s", ind, child)
	}
	return resp, nil
}
