package avlkv

import (
	"bytes"
	"testing"

	"github.com/jaiminpan/avlkv/tree"
)

func TestSnapshotIsInsulatedFromLaterApply(t *testing.T) {
	s := openTemp(t)
	if err := s.Apply(tree.Batch{put("a", "1")}); err != nil {
		t.Fatal(err)
	}

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	defer snap.Release()

	if err := s.Apply(tree.Batch{put("a", "2"), put("b", "3")}); err != nil {
		t.Fatal(err)
	}

	v, err := snap.Get([]byte("a"))
	if err != nil || !bytes.Equal(v, []byte("1")) {
		t.Fatalf("snapshot Get(a) = %q, %v, want \"1\"", v, err)
	}
	if _, err := s.Get([]byte("a")); err != nil {
		t.Fatal(err)
	}
	liveV, err := s.Get([]byte("a"))
	if err != nil || string(liveV) != "2" {
		t.Fatalf("live Get(a) = %q, %v, want \"2\"", liveV, err)
	}
	if snap.RootHash() == s.RootHash() {
		t.Fatal("snapshot and live root hashes should have diverged")
	}
}

func TestSnapshotProve(t *testing.T) {
	s := openTemp(t)
	if err := s.Apply(tree.Batch{put("a", "1"), put("b", "2")}); err != nil {
		t.Fatal(err)
	}
	snap, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	defer snap.Release()

	encoded, err := snap.Prove(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(encoded) == 0 {
		t.Fatal("expected a non-empty proof")
	}
}
