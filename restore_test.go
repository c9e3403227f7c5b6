package avlkv

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/jaiminpan/avlkv/proofs"
	"github.com/jaiminpan/avlkv/tree"
)

func TestRestoreReplicatesStoreFromChunkStream(t *testing.T) {
	src := buildSeqStore(t, 40)
	rootHash := src.RootHash()
	root, err := src.fetch().FetchByKey(rootKeyOf(t, src))
	if err != nil {
		t.Fatal(err)
	}
	statedLength := proofs.LeafChunkCount(root.Height())

	it, err := src.Chunks()
	if err != nil {
		t.Fatal(err)
	}

	r, err := NewRestorer("", Options{InMemory: true}, rootHash, statedLength)
	if err != nil {
		t.Fatal(err)
	}

	for {
		chunk, ok := it.Next()
		if !ok {
			break
		}
		if _, err := r.ProcessChunk(chunk); err != nil {
			t.Fatalf("ProcessChunk: %v", err)
		}
	}

	restored, err := r.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	defer restored.Close()

	if restored.RootHash() != rootHash {
		t.Fatalf("restored root hash = %s, want %s", restored.RootHash(), rootHash)
	}
	for i := 0; i < 40; i++ {
		key := []byte(fmt.Sprintf("k%04d", i))
		want := []byte(fmt.Sprintf("v%d", i))
		got, err := restored.Get(key)
		if err != nil {
			t.Fatalf("Get(%s): %v", key, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get(%s) = %q, want %q", key, got, want)
		}
	}
}

func TestRestoreRejectsWrongRootHash(t *testing.T) {
	src := buildSeqStore(t, 10)
	root, err := src.fetch().FetchByKey(rootKeyOf(t, src))
	if err != nil {
		t.Fatal(err)
	}
	statedLength := proofs.LeafChunkCount(root.Height())

	it, err := src.Chunks()
	if err != nil {
		t.Fatal(err)
	}
	trunk, _ := it.Next()

	var wrongHash tree.Hash
	r, err := NewRestorer("", Options{InMemory: true}, wrongHash, statedLength)
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.ProcessChunk(trunk)

	var restoreErr *RestoreError
	if !errors.As(err, &restoreErr) {
		t.Fatalf("expected a *RestoreError, got %v", err)
	}
	var hashErr *HashMismatchError
	if !errors.As(err, &hashErr) {
		t.Fatalf("expected the *RestoreError to unwrap to a *HashMismatchError, got %v", err)
	}
}

func TestRestoreFinalizeErrorsWithUnprocessedChunks(t *testing.T) {
	src := buildSeqStore(t, 10)
	rootHash := src.RootHash()
	root, err := src.fetch().FetchByKey(rootKeyOf(t, src))
	if err != nil {
		t.Fatal(err)
	}
	statedLength := proofs.LeafChunkCount(root.Height())

	it, err := src.Chunks()
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewRestorer("", Options{InMemory: true}, rootHash, statedLength)
	if err != nil {
		t.Fatal(err)
	}

	trunk, _ := it.Next()
	if _, err := r.ProcessChunk(trunk); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Finalize(); err == nil {
		t.Fatal("expected finalize to fail with leaf chunks still unprocessed")
	}
}
