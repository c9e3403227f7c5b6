package proofs

import (
	"testing"

	"github.com/jaiminpan/avlkv/tree"
)

func buildSeqTree(t *testing.T, n int) *tree.Node {
	t.Helper()
	var batch tree.Batch
	for i := 0; i < n; i++ {
		k := byte(i)
		batch = append(batch, tree.BatchEntry{Key: []byte{k}, Op: tree.Put, Value: []byte{k}})
	}
	root, _, err := tree.ApplyTo(nil, batch, tree.PanicSource{})
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func TestLeafChunkCountIsPowerOfTwoOfHalfHeight(t *testing.T) {
	if got := LeafChunkCount(6); got != 8 {
		t.Fatalf("LeafChunkCount(6) = %d, want 8", got)
	}
	if got := TrunkHeight(6); got != 3 {
		t.Fatalf("TrunkHeight(6) = %d, want 3", got)
	}
}

func TestCreateTrunkProofExecutesToASingleRoot(t *testing.T) {
	root := buildSeqTree(t, 31)
	ops, err := CreateTrunkProof(root, tree.PanicSource{})
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) == 0 {
		t.Fatal("expected a non-empty trunk proof for a 31-node tree")
	}
	if _, err := Execute(ops, false, nil); err != nil {
		t.Fatalf("trunk proof did not execute to a single root: %v", err)
	}
}

func TestCreateLeafChunkReproducesSubtreeHash(t *testing.T) {
	root := buildSeqTree(t, 15)
	ops, err := CreateLeafChunk(root, tree.PanicSource{})
	if err != nil {
		t.Fatal(err)
	}
	pt, err := Execute(ops, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := pt.Hash(), root.Hash(); got != want {
		t.Fatalf("leaf chunk hash = %s, want %s", got, want)
	}
}
