package proofs

import (
	"bytes"
	"errors"
	"testing"
)

func kv(key, value string) Node { return PushKV([]byte(key), []byte(value)) }

func TestMapBuilderInsertRejectsOutOfOrderKeys(t *testing.T) {
	b := NewMapBuilder()
	if err := b.Insert(kv("b", "1")); err != nil {
		t.Fatal(err)
	}
	if err := b.Insert(kv("a", "2")); err == nil {
		t.Fatal("expected an error for a key that doesn't increase")
	}
}

func TestMapGetIncludedEntry(t *testing.T) {
	b := NewMapBuilder()
	_ = b.Insert(kv("a", "1"))
	_ = b.Insert(Node{Kind: NodeHash})
	_ = b.Insert(kv("c", "3"))
	m := b.Build()

	v, ok, err := m.Get([]byte("a"))
	if err != nil || !ok || !bytes.Equal(v, []byte("1")) {
		t.Fatalf("Get(a) = (%v, %v, %v)", v, ok, err)
	}
}

func TestMapGetValidAbsenceProof(t *testing.T) {
	b := NewMapBuilder()
	_ = b.Insert(kv("a", "1"))
	_ = b.Insert(kv("c", "2"))
	m := b.Build()

	_, ok, err := m.Get([]byte("b"))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("b was never inserted, expected absence")
	}
}

func TestMapGetMissingAbsenceProofErrors(t *testing.T) {
	b := NewMapBuilder()
	_ = b.Insert(kv("a", "1"))
	_ = b.Insert(Node{Kind: NodeHash})
	_ = b.Insert(kv("c", "2"))
	m := b.Build()

	if _, _, err := m.Get([]byte("b")); err == nil {
		t.Fatal("expected MissingDataError: the gap between a and c was abridged")
	}
}

func TestMapRangeOk(t *testing.T) {
	b := NewMapBuilder()
	_ = b.Insert(kv("a", "1"))
	_ = b.Insert(kv("b", "2"))
	_ = b.Insert(kv("c", "3"))
	m := b.Build()

	entries, err := m.Range([]byte("a"), []byte("c"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || string(entries[0][0]) != "a" || string(entries[1][0]) != "b" {
		t.Fatalf("unexpected range result: %v", entries)
	}
}

func TestMapGetBeforeFirstEntryIsContiguous(t *testing.T) {
	// A complete, unabridged proof of {3,5,7}: nothing precedes the
	// first push, so the implicit start of keyspace is proven just as
	// much as any other contiguous stretch.
	b := NewMapBuilder()
	_ = b.Insert(kv("3", "a"))
	_ = b.Insert(kv("5", "b"))
	_ = b.Insert(kv("7", "c"))
	m := b.Build()

	_, ok, err := m.Get([]byte("1"))
	if err != nil {
		t.Fatalf("Get before the first proven key: %v", err)
	}
	if ok {
		t.Fatal("key 1 was never inserted, expected absence")
	}
}

func TestMapRangeUnboundedStartSucceedsOnCompleteProof(t *testing.T) {
	b := NewMapBuilder()
	_ = b.Insert(kv("3", "a"))
	_ = b.Insert(kv("5", "b"))
	_ = b.Insert(kv("7", "c"))
	m := b.Build()

	entries, err := m.Range(nil, []byte("7"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || string(entries[0][0]) != "3" || string(entries[1][0]) != "5" {
		t.Fatalf("unexpected range result: %v", entries)
	}
}

func TestMapGetPastRightEdgeReturnsBoundError(t *testing.T) {
	b := NewMapBuilder()
	_ = b.Insert(kv("a", "1"))
	_ = b.Insert(Node{Kind: NodeHash})
	m := b.Build()

	_, _, err := m.Get([]byte("z"))
	var boundErr *BoundError
	if !errors.As(err, &boundErr) {
		t.Fatalf("expected a *BoundError, got %v", err)
	}
}

func TestMapRangeUnprovenEndReturnsBoundError(t *testing.T) {
	b := NewMapBuilder()
	_ = b.Insert(kv("a", "1"))
	_ = b.Insert(Node{Kind: NodeHash})
	m := b.Build()

	_, err := m.Range([]byte("a"), nil)
	var boundErr *BoundError
	if !errors.As(err, &boundErr) {
		t.Fatalf("expected a *BoundError, got %v", err)
	}
}

func TestMapRangeAbridgedErrors(t *testing.T) {
	b := NewMapBuilder()
	_ = b.Insert(kv("a", "1"))
	_ = b.Insert(Node{Kind: NodeHash})
	_ = b.Insert(kv("c", "2"))
	m := b.Build()

	if _, err := m.Range([]byte("a"), []byte("c")); err == nil {
		t.Fatal("expected a missing-data error crossing the abridged gap")
	}
}
