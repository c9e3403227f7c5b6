package avlkv

import (
	"fmt"
	"os"

	"github.com/jaiminpan/avlkv/db"
	"github.com/jaiminpan/avlkv/proofs"
	"github.com/jaiminpan/avlkv/tree"
)

// Restorer replicates a store from a remote peer's chunk stream:
// decoding, verifying, and storing each chunk proof in turn. Chunks
// must be fed to ProcessChunk in order; a chunk that fails verification
// should be re-fetched and retried without advancing past it.
//
// Restore never trusts a peer past the first chunk: the trunk is
// checked against expectedRootHash, and every leaf chunk after it is
// checked against a hash recorded in that already-verified trunk, so a
// malicious peer can poison at most one chunk before detection.
type Restorer struct {
	store            *Store
	expectedRootHash tree.Hash
	statedLength     int

	started    bool
	leafHashes []tree.Hash
	leafIdx    int
}

// NewRestorer opens a fresh store at path (which must not already
// exist unless opts.InMemory) to receive a chunk stream. The first
// chunk passed to ProcessChunk is checked against expectedRootHash;
// statedLength is the peer-claimed chunk count, cross-checked against
// the trunk's own implied chunk count once verified.
func NewRestorer(path string, opts Options, expectedRootHash tree.Hash, statedLength int) (*Restorer, error) {
	if !opts.InMemory {
		if _, err := os.Stat(path); err == nil {
			return nil, fmt.Errorf("avlkv: restore destination %s already exists", path)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("avlkv: checking restore destination %s: %w", path, err)
		}
	}

	store, err := Open(path, opts)
	if err != nil {
		return nil, err
	}
	return &Restorer{
		store:            store,
		expectedRootHash: expectedRootHash,
		statedLength:     statedLength,
	}, nil
}

// RemainingChunks reports how many leaf chunks are still expected. It
// is only meaningful after the trunk chunk has been processed.
func (r *Restorer) RemainingChunks() int {
	if !r.started {
		return -1
	}
	return len(r.leafHashes) - r.leafIdx
}

// ProcessChunk verifies chunkBytes and writes its data to the
// in-progress store, returning the number of chunks still expected.
func (r *Restorer) ProcessChunk(chunkBytes []byte) (int, error) {
	ops, err := proofs.Decode(chunkBytes)
	if err != nil {
		return 0, fmt.Errorf("avlkv: decoding chunk: %w", err)
	}
	if !r.started {
		return r.processTrunk(ops)
	}
	return r.processLeaf(ops)
}

func (r *Restorer) processTrunk(ops []proofs.Op) (int, error) {
	trunk, err := proofs.Execute(ops, false, nil)
	if err != nil {
		return 0, &RestoreError{Reason: "verifying trunk chunk", Err: err}
	}
	if got := trunk.Hash(); got != r.expectedRootHash {
		return 0, &RestoreError{Reason: "verifying trunk chunk", Err: &HashMismatchError{Got: got, Want: r.expectedRootHash}}
	}
	if trunk.Node.Kind != proofs.NodeKV {
		return 0, &RestoreError{Reason: "verifying trunk chunk", Err: fmt.Errorf("trunk root carries no key")}
	}
	rootKey := append([]byte(nil), trunk.Node.Key...)

	// trunk.Height() counts the bottom (chunk-boundary) row as one level
	// below the deepest level it attached, so the row itself sits at
	// 0-indexed depth Height()-1 -- matching TrunkHeight(realHeight) on
	// the building side.
	trunkHeight := int(trunk.Height()) - 1
	leafNodes := trunk.Layer(trunkHeight)
	leafHashes := make([]tree.Hash, len(leafNodes))
	for i, n := range leafNodes {
		leafHashes[i] = n.Hash()
	}

	chunksImplied := 1 << trunkHeight
	if len(leafHashes) != chunksImplied {
		return 0, &RestoreError{
			Reason: "verifying trunk chunk",
			Err:    fmt.Errorf("trunk implies %d leaf chunks but exposed %d", chunksImplied, len(leafHashes)),
		}
	}
	if r.statedLength != chunksImplied {
		return 0, &RestoreError{
			Reason: "verifying trunk chunk",
			Err:    fmt.Errorf("peer stated %d chunks, trunk implies %d", r.statedLength, chunksImplied),
		}
	}

	if err := r.writeProofTree(trunk); err != nil {
		return 0, err
	}
	if err := r.store.setRootKey(rootKey); err != nil {
		return 0, err
	}

	r.leafHashes = leafHashes
	r.started = true
	return r.RemainingChunks(), nil
}

func (r *Restorer) processLeaf(ops []proofs.Op) (int, error) {
	if r.leafIdx >= len(r.leafHashes) {
		return 0, fmt.Errorf("avlkv: received more chunks than expected")
	}
	expected := r.leafHashes[r.leafIdx]

	reason := fmt.Sprintf("verifying leaf chunk %d", r.leafIdx)

	leaf, err := proofs.Execute(ops, false, nil)
	if err != nil {
		return 0, &RestoreError{Reason: reason, Err: err}
	}
	if got := leaf.Hash(); got != expected {
		return 0, &RestoreError{Reason: reason, Err: &HashMismatchError{Got: got, Want: expected}}
	}

	// The leaf's root is the same node the trunk wrote as a childless
	// placeholder; rewriting it here (along with the rest of its
	// subtree) replaces that placeholder with its real children.
	if err := r.writeProofTree(leaf); err != nil {
		return 0, err
	}

	r.leafIdx++
	return r.RemainingChunks(), nil
}

// writeProofTree writes every KV node in tree's verified structure to
// the restorer's backing store in a single batch, translating each
// node's attached proof children into Reference links.
func (r *Restorer) writeProofTree(t *proofs.ProofTree) error {
	batch := r.store.kv.NewBatch()

	var visitErr error
	t.VisitRefs(func(node *proofs.ProofTree) {
		if visitErr != nil {
			return
		}
		n, err := nodeFromProofTree(node)
		if err != nil {
			visitErr = err
			return
		}
		encoded, err := n.Encode()
		if err != nil {
			visitErr = err
			return
		}
		visitErr = batch.Put(n.Key(), encoded)
	})
	if visitErr != nil {
		return visitErr
	}
	return batch.Commit()
}

func nodeFromProofTree(t *proofs.ProofTree) (*tree.Node, error) {
	if t.Node.Kind != proofs.NodeKV {
		return nil, fmt.Errorf("avlkv: restore proof node at %q carries no key/value", t.Node.Key)
	}
	n, err := tree.New(t.Node.Key, t.Node.Value)
	if err != nil {
		return nil, err
	}
	n.Left = referenceLink(t.Left)
	n.Right = referenceLink(t.Right)
	return n, nil
}

// referenceLink builds the Reference link a restored node should carry
// for one side, or nil if that side's child was not part of the
// verified proof structure (a chunk boundary, to be filled in by a
// later chunk, or a genuinely absent child).
func referenceLink(c *proofs.Child) *tree.Link {
	if c == nil {
		return nil
	}
	var key []byte
	if c.Tree != nil && c.Tree.Node.Kind == proofs.NodeKV {
		key = append([]byte(nil), c.Tree.Node.Key...)
	}
	return &tree.Link{
		Kind:        tree.LinkReference,
		Hash:        c.Hash,
		LeftHeight:  proofTreeChildHeight(c.Tree, true),
		RightHeight: proofTreeChildHeight(c.Tree, false),
		Key:         key,
	}
}

func proofTreeChildHeight(t *proofs.ProofTree, left bool) uint8 {
	if t == nil {
		return 0
	}
	c := t.Left
	if !left {
		c = t.Right
	}
	if c == nil || c.Tree == nil {
		return 0
	}
	return c.Tree.Height()
}

// Finalize consumes the Restorer and returns the newly populated store.
// It errors if any expected leaf chunk has not yet been processed.
func (r *Restorer) Finalize() (*Store, error) {
	if !r.started {
		return nil, fmt.Errorf("avlkv: finalize called before the trunk chunk was processed")
	}
	if remaining := r.RemainingChunks(); remaining != 0 {
		return nil, fmt.Errorf("avlkv: finalize called with %d chunks still unprocessed", remaining)
	}
	if err := r.store.loadRoot(); err != nil {
		return nil, err
	}
	return r.store, nil
}

// setRootKey records rootKey as the store's root pointer. It does not
// touch the in-memory root; Finalize loads that via loadRoot. Used by
// Restorer, which writes nodes directly to the backing store outside
// the normal Apply path.
func (s *Store) setRootKey(rootKey []byte) error {
	if err := s.kv.Put(db.RootKey(), rootKey); err != nil {
		return fmt.Errorf("avlkv: writing root pointer: %w", err)
	}
	return nil
}
