package avlkv

import (
	"fmt"

	"github.com/jaiminpan/avlkv/proofs"
	"github.com/jaiminpan/avlkv/tree"
)

// ChunkIter yields a store's serialized chunk stream in the order the
// Restorer expects: one trunk chunk followed by 2^(h/2) leaf chunks.
type ChunkIter struct {
	chunks [][]byte
	idx    int
}

// Chunks builds the chunk stream for the store's current root. The
// result is a point-in-time snapshot of the tree structure as of this
// call: it does not reflect subsequent Apply calls.
func (s *Store) Chunks() (*ChunkIter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.root == nil {
		return &ChunkIter{}, nil
	}

	fetch := s.fetch()
	trunkHeight := proofs.TrunkHeight(s.root.Height())

	trunkOps, err := proofs.CreateTrunkProof(s.root, fetch)
	if err != nil {
		return nil, fmt.Errorf("avlkv: building trunk chunk: %w", err)
	}
	trunkBytes, err := proofs.Encode(trunkOps)
	if err != nil {
		return nil, err
	}

	leafRoots, err := nodesAtDepth(s.root, fetch, int(trunkHeight))
	if err != nil {
		return nil, fmt.Errorf("avlkv: locating leaf chunk boundaries: %w", err)
	}

	chunks := make([][]byte, 0, 1+len(leafRoots))
	chunks = append(chunks, trunkBytes)
	for _, leaf := range leafRoots {
		ops, err := proofs.CreateLeafChunk(leaf, fetch)
		if err != nil {
			return nil, fmt.Errorf("avlkv: building leaf chunk for %x: %w", leaf.Key(), err)
		}
		encoded, err := proofs.Encode(ops)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, encoded)
	}

	return &ChunkIter{chunks: chunks}, nil
}

// nodesAtDepth returns, left to right, every node at the given depth
// below root (root itself is depth 0), fetching unresident children as
// needed.
func nodesAtDepth(root *tree.Node, fetch tree.Fetch, depth int) ([]*tree.Node, error) {
	w := tree.NewWalker(fetch)
	var out []*tree.Node
	var walk func(n *tree.Node, d int) error
	walk = func(n *tree.Node, d int) error {
		if n == nil {
			return nil
		}
		if d == depth {
			out = append(out, n)
			return nil
		}
		left, err := w.Walk(n, true)
		if err != nil {
			return err
		}
		if err := walk(left, d+1); err != nil {
			return err
		}
		right, err := w.Walk(n, false)
		if err != nil {
			return err
		}
		return walk(right, d+1)
	}
	if err := walk(root, 0); err != nil {
		return nil, err
	}
	return out, nil
}

// Len reports the total number of chunks (trunk plus leaves).
func (it *ChunkIter) Len() int { return len(it.chunks) }

// Next returns the next chunk's encoded bytes, or (nil, false) once
// the stream is exhausted.
func (it *ChunkIter) Next() ([]byte, bool) {
	if it.idx >= len(it.chunks) {
		return nil, false
	}
	chunk := it.chunks[it.idx]
	it.idx++
	return chunk, true
}
