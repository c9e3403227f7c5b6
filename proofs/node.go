// Package proofs implements the Merkle proof stack language: the
// three-opcode encoding (§4.6), the proof builder (§4.7), the proof
// verifier (§4.8), and the chunk sync protocol (§4.9) built on top of
// package tree.
package proofs

import "github.com/jaiminpan/avlkv/tree"

// NodeKind identifies which of the three proof payload shapes a pushed
// node carries.
type NodeKind uint8

const (
	// NodeHash carries an opaque subtree digest: the prover withheld
	// everything about this subtree except its hash.
	NodeHash NodeKind = iota
	// NodeKVHash carries a kv hash only: the node's identity (key,
	// value) is withheld but its presence in the tree is attested.
	NodeKVHash
	// NodeKV carries a full key/value pair.
	NodeKV
)

func (k NodeKind) String() string {
	switch k {
	case NodeHash:
		return "Hash"
	case NodeKVHash:
		return "KVHash"
	case NodeKV:
		return "KV"
	default:
		return "unknown"
	}
}

// Node is one of the three proof payload shapes pushed by a Push op.
// Kind selects which fields are meaningful: Hash for NodeHash and
// NodeKVHash, Key and Value for NodeKV.
type Node struct {
	Kind NodeKind

	Hash   tree.Hash // valid when Kind == NodeHash or NodeKVHash
	Key    []byte    // valid when Kind == NodeKV
	Value  []byte    // valid when Kind == NodeKV
}

// PushHash builds a Node carrying an opaque subtree hash.
func PushHash(h tree.Hash) Node { return Node{Kind: NodeHash, Hash: h} }

// PushKVHash builds a Node carrying a kv hash with the node's identity
// withheld.
func PushKVHash(h tree.Hash) Node { return Node{Kind: NodeKVHash, Hash: h} }

// PushKV builds a Node carrying a full key/value pair.
func PushKV(key, value []byte) Node {
	return Node{Kind: NodeKV, Key: key, Value: value}
}

// kvHash returns the kv_hash this node implies: computed from Key/Value
// when Kind is NodeKV, otherwise the carried Hash (which already *is*
// the kv hash for NodeKVHash, or stands in directly for NodeHash since
// callers of kvHash on a NodeHash node are only ever computing a node
// hash where the subtree itself is opaque).
func (n Node) kvHash() tree.Hash {
	if n.Kind == NodeKV {
		return tree.KVHash(n.Key, n.Value)
	}
	return n.Hash
}
