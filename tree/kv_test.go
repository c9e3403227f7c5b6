package tree

import (
	"bytes"
	"testing"
)

func TestNewKVRejectsEmptyKey(t *testing.T) {
	if _, err := NewKV(nil, []byte("v")); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestNewKVRejectsOversizedKey(t *testing.T) {
	key := make([]byte, MaxKeyLength+1)
	if _, err := NewKV(key, []byte("v")); err == nil {
		t.Fatal("expected error for oversized key")
	}
}

func TestNewKVRejectsOversizedValue(t *testing.T) {
	value := make([]byte, MaxValueLength+1)
	if _, err := NewKV([]byte("k"), value); err == nil {
		t.Fatal("expected error for oversized value")
	}
}

func TestKVEncodeDecodeRoundtrip(t *testing.T) {
	kv, err := NewKV([]byte("hello"), []byte("world"))
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeKV(kv.Key(), kv.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded.Value(), kv.Value()) {
		t.Fatalf("value mismatch: %q != %q", decoded.Value(), kv.Value())
	}
	if decoded.Hash() != kv.Hash() {
		t.Fatal("decoded hash should match stored hash")
	}
}

func TestKVWithValueRecomputesHash(t *testing.T) {
	kv, err := NewKV([]byte("k"), []byte("v1"))
	if err != nil {
		t.Fatal(err)
	}
	updated, err := kv.WithValue([]byte("v2"))
	if err != nil {
		t.Fatal(err)
	}
	if updated.Hash() == kv.Hash() {
		t.Fatal("hash should change when value changes")
	}
	if updated.Hash() != KVHash([]byte("k"), []byte("v2")) {
		t.Fatal("updated hash should match KVHash(key, new value)")
	}
}
