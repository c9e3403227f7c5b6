package avlkv

import (
	"fmt"
	"testing"

	"github.com/jaiminpan/avlkv/proofs"
	"github.com/jaiminpan/avlkv/tree"
)

func buildSeqStore(t *testing.T, n int) *Store {
	t.Helper()
	s := openTemp(t)
	var batch tree.Batch
	for i := 0; i < n; i++ {
		batch = append(batch, put(fmt.Sprintf("k%04d", i), fmt.Sprintf("v%d", i)))
	}
	if err := s.Apply(batch); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestChunksCountMatchesTrunkHeight(t *testing.T) {
	s := buildSeqStore(t, 63)

	it, err := s.Chunks()
	if err != nil {
		t.Fatal(err)
	}

	root, err := s.fetch().FetchByKey(rootKeyOf(t, s))
	if err != nil {
		t.Fatal(err)
	}
	wantLeaves := proofs.LeafChunkCount(root.Height())
	if it.Len() != wantLeaves+1 {
		t.Fatalf("got %d chunks, want %d (1 trunk + %d leaves)", it.Len(), wantLeaves+1, wantLeaves)
	}
}

func rootKeyOf(t *testing.T, s *Store) []byte {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.root == nil {
		t.Fatal("store has no root")
	}
	return s.root.Key()
}

func TestChunksEachChunkDecodes(t *testing.T) {
	s := buildSeqStore(t, 31)
	it, err := s.Chunks()
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for {
		chunk, ok := it.Next()
		if !ok {
			break
		}
		if _, err := proofs.Decode(chunk); err != nil {
			t.Fatalf("chunk %d failed to decode: %v", count, err)
		}
		count++
	}
	if count != it.Len() {
		t.Fatalf("iterated %d chunks, Len() reported %d", count, it.Len())
	}
}
