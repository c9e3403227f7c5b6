// Package tree implements the in-memory AVL-balanced Merkle tree: nodes,
// links, hashing, node encoding, the batch-mutation engine, and the
// commit/prune pipeline. It has no knowledge of proofs or of any particular
// backing store; those live in package proofs and package db respectively.
package tree

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// HashLength is the digest size used throughout the tree, in bytes.
const HashLength = 20

// Hash is a fixed-size digest. The zero value is the null hash, used in
// place of an absent child when computing a node hash.
type Hash [HashLength]byte

// NullHash is the all-zero digest that stands in for an absent child.
var NullHash = Hash{}

// IsZero reports whether h is the null hash.
func (h Hash) IsZero() bool {
	return h == NullHash
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns the hash as a newly allocated byte slice.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashLength)
	copy(b, h[:])
	return b
}

// HashFromBytes copies the first HashLength bytes of b into a Hash. It
// panics if b is shorter than HashLength, since this is always a decode-path
// programmer error (callers must validate lengths before calling).
func HashFromBytes(b []byte) Hash {
	var h Hash
	if len(b) < HashLength {
		panic("tree: short hash slice")
	}
	copy(h[:], b[:HashLength])
	return h
}

// KVHash computes the hash of a (key, value) pair as specified: a Blake2b-20
// digest over the length-prefixed key followed by the length-prefixed value.
// Keys longer than 255 bytes or values longer than 65535 bytes are a
// programmer error caught earlier by ValidateKV; KVHash itself does not
// re-check since it sits on the hot path.
func KVHash(key, value []byte) Hash {
	h, err := blake2b.New(HashLength, nil)
	if err != nil {
		// Only returns an error for invalid output sizes/keys, neither of
		// which applies here.
		panic(err)
	}
	h.Write([]byte{byte(len(key))})
	h.Write(key)
	var vlen [2]byte
	vlen[0] = byte(len(value) >> 8)
	vlen[1] = byte(len(value))
	h.Write(vlen[:])
	h.Write(value)
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// NodeHash computes the hash of a tree node from its kv hash and the
// hashes of its two children (NullHash for an absent child).
func NodeHash(kvHash, left, right Hash) Hash {
	h, err := blake2b.New(HashLength, nil)
	if err != nil {
		panic(err)
	}
	h.Write(kvHash[:])
	h.Write(left[:])
	h.Write(right[:])
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}
