package avlkv

import (
	"fmt"

	"github.com/jaiminpan/avlkv/db"
	"github.com/jaiminpan/avlkv/proofs"
	"github.com/jaiminpan/avlkv/tree"
)

// Snapshot is a point-in-time, read-only view of a Store: a backing-
// store snapshot with its own root tree (re-decoded at the moment the
// snapshot was taken), insulated from writes the live Store accepts
// afterward.
type Snapshot struct {
	snap db.Snapshot
	root *tree.Node
}

// Snapshot takes a point-in-time view of the store. The result remains
// valid (and keeps seeing the store's state as of this call) across
// any number of subsequent Apply calls on s; call Release when done.
func (s *Store) Snapshot() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dbSnap, err := s.kv.NewSnapshot()
	if err != nil {
		return nil, fmt.Errorf("avlkv: taking snapshot: %w", err)
	}

	snap := &Snapshot{snap: dbSnap}
	rootKey, err := dbSnap.Get(db.RootKey())
	if err == db.ErrNotFound {
		return snap, nil
	}
	if err != nil {
		dbSnap.Release()
		return nil, fmt.Errorf("avlkv: reading snapshot root pointer: %w", err)
	}
	root, err := snap.fetch().FetchByKey(rootKey)
	if err != nil {
		dbSnap.Release()
		return nil, fmt.Errorf("avlkv: fetching snapshot root: %w", err)
	}
	snap.root = root
	return snap, nil
}

func (snap *Snapshot) fetch() tree.Fetch { return storeFetch{reader: snap.snap} }

// Get returns the value stored under key as of the snapshot, or
// db.ErrNotFound if absent.
func (snap *Snapshot) Get(key []byte) ([]byte, error) {
	w := tree.NewWalker(snap.fetch())
	node := snap.root
	for node != nil {
		cmp := compareBytes(key, node.Key())
		if cmp == 0 {
			return node.Value(), nil
		}
		child, err := w.Walk(node, cmp < 0)
		if err != nil {
			return nil, err
		}
		node = child
	}
	return nil, db.ErrNotFound
}

// Prove builds a proof for query against the snapshot's root.
func (snap *Snapshot) Prove(query []proofs.QueryItem) ([]byte, error) {
	ops, _, _, err := proofs.CreateProof(snap.root, snap.fetch(), query)
	if err != nil {
		return nil, err
	}
	return proofs.Encode(ops)
}

// RootHash returns the snapshot's root hash, or the null hash for an
// empty tree.
func (snap *Snapshot) RootHash() tree.Hash {
	if snap.root == nil {
		return tree.NullHash
	}
	return snap.root.Hash()
}

// Release frees resources held by the snapshot. The snapshot must not
// be used afterward.
func (snap *Snapshot) Release() { snap.snap.Release() }
