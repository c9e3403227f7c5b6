package avlkv

import (
	"fmt"

	"github.com/jaiminpan/avlkv/tree"
)

// KeyTooLongError is returned when a key handed to Apply/Get/Prove
// exceeds tree.MaxKeyLength.
type KeyTooLongError struct {
	Length int
}

func (e *KeyTooLongError) Error() string {
	return fmt.Sprintf("avlkv: key length %d exceeds the maximum", e.Length)
}

// checkKeyLength returns a *KeyTooLongError if key exceeds
// tree.MaxKeyLength, the precondition Apply/Get/Prove enforce on every
// key they're handed before it ever reaches package tree.
func checkKeyLength(key []byte) error {
	if len(key) > tree.MaxKeyLength {
		return &KeyTooLongError{Length: len(key)}
	}
	return nil
}

// MissingNodeError is returned when a required lookup (one the caller
// has no way to treat as "absent") finds no node for a key that a
// Link says must exist. This always indicates backing-store corruption
// or a torn write, never a normal miss.
type MissingNodeError struct {
	Key []byte
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("avlkv: missing node for key %x", e.Key)
}

// RestoreError wraps a verification failure encountered while applying
// a chunk during Restore. The caller may retry the same chunk from a
// different peer; the Restorer's internal state is left unchanged.
type RestoreError struct {
	Reason string
	Err    error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("avlkv: restore: %s: %v", e.Reason, e.Err)
}

func (e *RestoreError) Unwrap() error { return e.Err }

// HashMismatchError is returned when a verified structure's computed
// hash does not match the hash it was checked against: a trunk chunk
// against an expected root hash, or a leaf chunk against the hash the
// trunk recorded for it.
type HashMismatchError struct {
	Got, Want tree.Hash
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("avlkv: hash mismatch: got %s, want %s", e.Got, e.Want)
}
