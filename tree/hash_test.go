package tree

import "testing"

func TestNullHashIsZero(t *testing.T) {
	if !NullHash.IsZero() {
		t.Fatal("NullHash should be zero")
	}
}

func TestKVHashDeterministic(t *testing.T) {
	a := KVHash([]byte("k"), []byte("v"))
	b := KVHash([]byte("k"), []byte("v"))
	if a != b {
		t.Fatalf("KVHash not deterministic: %x != %x", a, b)
	}
	c := KVHash([]byte("k"), []byte("v2"))
	if a == c {
		t.Fatal("KVHash collided across different values")
	}
}

func TestNodeHashDependsOnChildren(t *testing.T) {
	kv := KVHash([]byte("k"), []byte("v"))
	h1 := NodeHash(kv, NullHash, NullHash)
	h2 := NodeHash(kv, Hash{1}, NullHash)
	if h1 == h2 {
		t.Fatal("NodeHash ignored left child hash")
	}
}

func TestHashFromBytesRoundtrip(t *testing.T) {
	h := KVHash([]byte("a"), []byte("b"))
	h2 := HashFromBytes(h.Bytes())
	if h != h2 {
		t.Fatalf("roundtrip mismatch: %x != %x", h, h2)
	}
}

func TestHashFromBytesPanicsOnShortInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on short input")
		}
	}()
	HashFromBytes([]byte{1, 2, 3})
}
