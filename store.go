// Package avlkv ties together package tree, package proofs, and
// package db into the top-level authenticated ordered key-value store:
// Open/Get/Apply/Prove/Snapshot/Chunks/Restore/Destroy.
package avlkv

import (
	"fmt"
	"os"
	"sync"

	"github.com/jaiminpan/avlkv/db"
	"github.com/jaiminpan/avlkv/proofs"
	"github.com/jaiminpan/avlkv/tree"
)

// storeFetch adapts a db.KeyValueReader into a tree.Fetch, decoding
// each fetched record with the external key the reader looked it up
// under (the node record itself carries no key, per spec §4.2).
type storeFetch struct {
	reader db.KeyValueReader
}

func (f storeFetch) FetchByKey(key []byte) (*tree.Node, error) {
	buf, err := f.reader.Get(key)
	if err == db.ErrNotFound {
		return nil, &MissingNodeError{Key: append([]byte(nil), key...)}
	}
	if err != nil {
		return nil, err
	}
	return tree.Decode(key, buf)
}

// Store is a single-writer, concurrently-readable authenticated
// ordered key-value store. The zero value is not usable; construct one
// with Open.
type Store struct {
	mu   sync.Mutex
	kv   db.KeyValueStore
	opts Options

	// root is the in-memory resident root of the tree, or nil for an
	// empty store. Protected by mu: the core is single-writer (spec
	// §5), so every mutation of root happens under mu held.
	root *tree.Node
}

// Open opens (creating if necessary) a store at path. Pass
// opts.InMemory to back it with db.MemDB instead of a Badger directory
// at path (path is then ignored).
func Open(path string, opts Options) (*Store, error) {
	var kv db.KeyValueStore
	if opts.InMemory {
		kv = db.NewMemDB()
	} else {
		opts.Dir = path
		bs, err := db.OpenBadgerStore(db.BadgerOptions{Dir: path, Logger: opts.logger()})
		if err != nil {
			return nil, fmt.Errorf("avlkv: opening store at %s: %w", path, err)
		}
		kv = bs
	}

	s := &Store{kv: kv, opts: opts}
	if err := s.loadRoot(); err != nil {
		kv.Close()
		return nil, err
	}
	return s, nil
}

// Destroy removes a store's on-disk data at path. It is an error to
// call Destroy on a path with a store still open.
func Destroy(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("avlkv: destroying store at %s: %w", path, err)
	}
	return nil
}

// Close releases the store's backing-store handle.
func (s *Store) Close() error { return s.kv.Close() }

func (s *Store) fetch() tree.Fetch { return storeFetch{reader: s.kv} }

// loadRoot reads the reserved root-pointer key (which names the root
// node's own key) and, if present, fetches the root node itself. An
// absent root-pointer key means an empty tree, not an error.
func (s *Store) loadRoot() error {
	rootKey, err := s.kv.Get(db.RootKey())
	if err == db.ErrNotFound {
		s.root = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("avlkv: reading root pointer: %w", err)
	}
	root, err := s.fetch().FetchByKey(rootKey)
	if err != nil {
		return fmt.Errorf("avlkv: fetching root node %x: %w", rootKey, err)
	}
	s.root = root
	return nil
}

// Get returns the value stored under key, or db.ErrNotFound if absent.
func (s *Store) Get(key []byte) ([]byte, error) {
	if err := checkKeyLength(key); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(key)
}

func (s *Store) get(key []byte) ([]byte, error) {
	node, err := s.findNode(s.root, key)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, db.ErrNotFound
	}
	return node.Value(), nil
}

func (s *Store) findNode(node *tree.Node, key []byte) (*tree.Node, error) {
	w := tree.NewWalker(s.fetch())
	for node != nil {
		cmp := compareBytes(key, node.Key())
		if cmp == 0 {
			return node, nil
		}
		child, err := w.Walk(node, cmp < 0)
		if err != nil {
			return nil, err
		}
		node = child
	}
	return nil, nil
}

func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// Apply validates batch is sorted by strictly increasing key, then
// applies it atomically: the new tree is committed to the backing
// store (including an updated root pointer) before Apply returns.
func (s *Store) Apply(batch tree.Batch) error {
	return s.apply(batch, tree.ApplyTo)
}

// ApplyUnchecked is Apply without validating batch's sort/uniqueness
// precondition. Passing an unsorted or duplicate-keyed batch is
// undefined behavior.
func (s *Store) ApplyUnchecked(batch tree.Batch) error {
	return s.apply(batch, tree.ApplyToUnchecked)
}

type applyFunc func(root *tree.Node, batch tree.Batch, fetch tree.Fetch) (*tree.Node, [][]byte, error)

func (s *Store) apply(batch tree.Batch, apply applyFunc) error {
	for _, entry := range batch {
		if err := checkKeyLength(entry.Key); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	newRoot, _, err := apply(s.root, batch, s.fetch())
	if err != nil {
		return err
	}

	wb := s.kv.NewBatch()
	if newRoot == nil {
		if err := wb.Delete(db.RootKey()); err != nil {
			return fmt.Errorf("avlkv: clearing root pointer: %w", err)
		}
	} else {
		committer := newLevelCommitter(wb, s.opts.KeepDepth)
		if err := tree.Commit(newRoot, committer); err != nil {
			return fmt.Errorf("avlkv: committing apply: %w", err)
		}
		if err := wb.Put(db.RootKey(), newRoot.Key()); err != nil {
			return fmt.Errorf("avlkv: updating root pointer: %w", err)
		}
	}
	if err := wb.Commit(); err != nil {
		return fmt.Errorf("avlkv: writing batch: %w", err)
	}

	s.root = newRoot
	return nil
}

// Prove builds a minimal Merkle proof for query (a sorted, merged list
// of QueryItems) against the store's current root, and returns the
// encoded proof bytes.
func (s *Store) Prove(query []proofs.QueryItem) ([]byte, error) {
	for _, item := range query {
		if err := checkKeyLength(item.LowerBound()); err != nil {
			return nil, err
		}
		if upper, _ := item.UpperBound(); upper != nil {
			if err := checkKeyLength(upper); err != nil {
				return nil, err
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ops, _, _, err := proofs.CreateProof(s.root, s.fetch(), query)
	if err != nil {
		return nil, err
	}
	return proofs.Encode(ops)
}

// RootHash returns the current root's hash, or the null hash for an
// empty store.
func (s *Store) RootHash() tree.Hash {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.root == nil {
		return tree.NullHash
	}
	return s.root.Hash()
}
