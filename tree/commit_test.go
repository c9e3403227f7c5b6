package tree

import (
	"fmt"
	"testing"
)

// recordingCommitter is a minimal in-memory Committer used to exercise
// Commit's finalize/write/prune sequencing in isolation from package db.
type recordingCommitter struct {
	store  map[string][]byte
	writes []string
	prune  bool
}

func newRecordingCommitter(pruneChildren bool) *recordingCommitter {
	return &recordingCommitter{store: map[string][]byte{}, prune: pruneChildren}
}

func (c *recordingCommitter) Write(node *Node) error {
	encoded, err := node.Encode()
	if err != nil {
		return err
	}
	c.store[string(node.Key())] = encoded
	c.writes = append(c.writes, string(node.Key()))
	return nil
}

func (c *recordingCommitter) Prune(link *Link, depth int) bool {
	return c.prune
}

func (c *recordingCommitter) fetch(key []byte) (*Node, error) {
	buf, ok := c.store[string(key)]
	if !ok {
		return nil, fmt.Errorf("commit test: no node stored for key %x", key)
	}
	return Decode(key, buf)
}

func TestCommitFinalizesAllLinksAndWritesEveryNode(t *testing.T) {
	var batch Batch
	for i := 0; i < 20; i++ {
		batch = append(batch, put(fmt.Sprintf("c%02d", i), fmt.Sprintf("v%d", i)))
	}
	root, _, err := ApplyTo(nil, batch, PanicSource{})
	if err != nil {
		t.Fatal(err)
	}

	committer := newRecordingCommitter(false)
	if err := Commit(root, committer); err != nil {
		t.Fatal(err)
	}
	if len(committer.writes) != 20 {
		t.Fatalf("expected 20 writes, got %d", len(committer.writes))
	}

	var checkFinalized func(n *Node)
	checkFinalized = func(n *Node) {
		if n == nil {
			return
		}
		for _, l := range []*Link{n.Left, n.Right} {
			if l == nil {
				continue
			}
			if l.Kind == LinkModified {
				t.Fatalf("link on %q still Modified after commit", n.Key())
			}
			if l.Kind != LinkReference {
				checkFinalized(l.Child)
			}
		}
	}
	checkFinalized(root)
}

func TestCommitPruneCollapsesChildrenToReference(t *testing.T) {
	root, _, err := ApplyTo(nil, Batch{put("a", "1"), put("b", "2"), put("c", "3")}, PanicSource{})
	if err != nil {
		t.Fatal(err)
	}
	committer := newRecordingCommitter(true)
	if err := Commit(root, committer); err != nil {
		t.Fatal(err)
	}
	for _, l := range []*Link{root.Left, root.Right} {
		if l == nil {
			continue
		}
		if l.Kind != LinkReference {
			t.Fatalf("expected pruned child to be a Reference link, got %s", l.Kind)
		}
		if l.Child != nil {
			t.Fatal("a Reference link should not retain its in-memory child after pruning")
		}
	}

	// The root itself is still resident; walking through it via the
	// committer's store must reproduce the pruned children.
	w := NewWalker(FetchFunc(committer.fetch))
	left, err := w.Walk(root, true)
	if err != nil {
		t.Fatal(err)
	}
	if left != nil && string(left.Value()) != "1" {
		t.Fatalf("unexpected left child value %q", left.Value())
	}
}
