package avlkv

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/jaiminpan/avlkv/db"
	"github.com/jaiminpan/avlkv/proofs"
	"github.com/jaiminpan/avlkv/tree"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open("", Options{InMemory: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func put(key, value string) tree.BatchEntry {
	return tree.BatchEntry{Key: []byte(key), Op: tree.Put, Value: []byte(value)}
}

func del(key string) tree.BatchEntry {
	return tree.BatchEntry{Key: []byte(key), Op: tree.Delete}
}

func TestStoreGetReturnsNotFoundOnEmptyStore(t *testing.T) {
	s := openTemp(t)
	if _, err := s.Get([]byte("a")); err != db.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreApplyThenGetRoundTrips(t *testing.T) {
	s := openTemp(t)
	if err := s.Apply(tree.Batch{put("a", "1"), put("b", "2"), put("c", "3")}); err != nil {
		t.Fatal(err)
	}
	for _, kv := range [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}} {
		v, err := s.Get([]byte(kv[0]))
		if err != nil {
			t.Fatalf("Get(%q): %v", kv[0], err)
		}
		if !bytes.Equal(v, []byte(kv[1])) {
			t.Fatalf("Get(%q) = %q, want %q", kv[0], v, kv[1])
		}
	}
}

func TestStoreApplyRejectsUnsortedBatch(t *testing.T) {
	s := openTemp(t)
	err := s.Apply(tree.Batch{put("b", "1"), put("a", "2")})
	if err == nil {
		t.Fatal("expected an error for an unsorted batch")
	}
}

func TestStoreApplyUncheckedAcceptsPreSortedBatch(t *testing.T) {
	s := openTemp(t)
	if err := s.ApplyUnchecked(tree.Batch{put("a", "1"), put("b", "2")}); err != nil {
		t.Fatal(err)
	}
	v, err := s.Get([]byte("b"))
	if err != nil || string(v) != "2" {
		t.Fatalf("Get(b) = %q, %v", v, err)
	}
}

func TestStoreDeleteRemovesKey(t *testing.T) {
	s := openTemp(t)
	if err := s.Apply(tree.Batch{put("a", "1"), put("b", "2")}); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(tree.Batch{del("a")}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get([]byte("a")); err != db.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStoreRootHashChangesAcrossApplyAndSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, Options{})
	if err != nil {
		t.Fatal(err)
	}

	empty := s.RootHash()
	if err := s.Apply(tree.Batch{put("a", "1")}); err != nil {
		t.Fatal(err)
	}
	afterPut := s.RootHash()
	if empty == afterPut {
		t.Fatal("root hash did not change after Apply")
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if reopened.RootHash() != afterPut {
		t.Fatalf("root hash after reopen = %s, want %s", reopened.RootHash(), afterPut)
	}
	v, err := reopened.Get([]byte("a"))
	if err != nil || string(v) != "1" {
		t.Fatalf("Get(a) after reopen = %q, %v", v, err)
	}
}

func TestStoreProveThenVerify(t *testing.T) {
	s := openTemp(t)
	var batch tree.Batch
	for i := 0; i < 30; i++ {
		batch = append(batch, put(fmt.Sprintf("k%03d", i), fmt.Sprintf("v%d", i)))
	}
	if err := s.Apply(batch); err != nil {
		t.Fatal(err)
	}

	encoded, err := s.Prove([]proofs.QueryItem{proofs.Key([]byte("k015"))})
	if err != nil {
		t.Fatal(err)
	}
	m, err := proofs.Verify(encoded, s.RootHash())
	if err != nil {
		t.Fatal(err)
	}
	v, ok, err := m.Get([]byte("k015"))
	if err != nil {
		t.Fatal(err)
	}
	if !ok || string(v) != "v15" {
		t.Fatalf("Get(k015) = %q, %v", v, ok)
	}
}

func TestStoreKeyTooLongIsRejected(t *testing.T) {
	s := openTemp(t)
	longKey := bytes.Repeat([]byte("x"), tree.MaxKeyLength+1)

	err := s.Apply(tree.Batch{{Key: longKey, Op: tree.Put, Value: []byte("v")}})
	var tooLong *KeyTooLongError
	if !errors.As(err, &tooLong) {
		t.Fatalf("Apply: expected a *KeyTooLongError, got %v", err)
	}

	if _, err := s.Get(longKey); !errors.As(err, &tooLong) {
		t.Fatalf("Get: expected a *KeyTooLongError, got %v", err)
	}

	if _, err := s.Prove([]proofs.QueryItem{proofs.Key(longKey)}); !errors.As(err, &tooLong) {
		t.Fatalf("Prove: expected a *KeyTooLongError, got %v", err)
	}
}
