package db

import (
	"bytes"
	"testing"
)

func TestMemDBPutGetDelete(t *testing.T) {
	m := NewMemDB()
	if err := m.Put([]byte("a"), []byte("1")); err != nil {
		t.Fatal(err)
	}
	v, err := m.Get([]byte("a"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(v, []byte("1")) {
		t.Fatalf("got %q", v)
	}
	if err := m.Delete([]byte("a")); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get([]byte("a")); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemDBBatchIsAtomicOnCommit(t *testing.T) {
	m := NewMemDB()
	b := m.NewBatch()
	b.Put([]byte("a"), []byte("1"))
	b.Put([]byte("b"), []byte("2"))
	if ok, _ := m.Has([]byte("a")); ok {
		t.Fatal("batch writes should not be visible before Commit")
	}
	if err := b.Commit(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := m.Has([]byte("a")); !ok {
		t.Fatal("expected key visible after Commit")
	}
	if ok, _ := m.Has([]byte("b")); !ok {
		t.Fatal("expected key visible after Commit")
	}
}

func TestMemDBSnapshotIsolation(t *testing.T) {
	m := NewMemDB()
	if err := m.Put([]byte("a"), []byte("1")); err != nil {
		t.Fatal(err)
	}
	snap, err := m.NewSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	defer snap.Release()

	if err := m.Put([]byte("a"), []byte("2")); err != nil {
		t.Fatal(err)
	}
	if err := m.Put([]byte("b"), []byte("3")); err != nil {
		t.Fatal(err)
	}

	v, err := snap.Get([]byte("a"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(v, []byte("1")) {
		t.Fatalf("snapshot should see old value, got %q", v)
	}
	if _, err := snap.Get([]byte("b")); err != ErrNotFound {
		t.Fatal("snapshot should not see keys written after it was taken")
	}
}

func TestMemDBIteratorOrderAndRange(t *testing.T) {
	m := NewMemDB()
	for _, k := range []string{"c", "a", "e", "b", "d"} {
		if err := m.Put([]byte(k), []byte(k)); err != nil {
			t.Fatal(err)
		}
	}
	snap, err := m.NewSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	defer snap.Release()

	it := snap.NewIterator([]byte("b"), []byte("e"))
	defer it.Release()
	var got []string
	for it.Next() {
		got = append(got, string(it.Key()))
	}
	if err := it.Error(); err != nil {
		t.Fatal(err)
	}
	want := []string{"b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
