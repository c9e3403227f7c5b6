// Package testutil provides test-only helpers for exercising package
// avlkv without hand-rolling store setup/teardown in every test.
package testutil

import (
	"testing"

	"github.com/jaiminpan/avlkv"
)

// TempStore opens an in-memory avlkv.Store for the duration of t,
// closing it automatically via t.Cleanup. Pass opts to override
// defaults (InMemory is forced true regardless of what's passed).
func TempStore(t *testing.T, opts avlkv.Options) *avlkv.Store {
	t.Helper()

	opts.InMemory = true
	store, err := avlkv.Open("", opts)
	if err != nil {
		t.Fatalf("testutil: opening temp store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("testutil: closing temp store: %v", err)
		}
	})
	return store
}

// TempDirStore opens a Badger-backed avlkv.Store rooted at a fresh
// t.TempDir(), closing and removing it automatically.
func TempDirStore(t *testing.T, opts avlkv.Options) *avlkv.Store {
	t.Helper()

	dir := t.TempDir()
	opts.InMemory = false
	store, err := avlkv.Open(dir, opts)
	if err != nil {
		t.Fatalf("testutil: opening temp dir store at %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("testutil: closing temp dir store: %v", err)
		}
	})
	return store
}
