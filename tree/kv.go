package tree

import "fmt"

// MaxKeyLength is the largest key accepted by the store: keys are length
// prefixed with a single byte (see spec §3).
const MaxKeyLength = 255

// MaxValueLength is the largest value accepted by the store: values are
// length prefixed with a big-endian uint16.
const MaxValueLength = 65535

// ValidateKV enforces the key/value size limits on write and on decode.
func ValidateKV(key, value []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("tree: key must not be empty")
	}
	if len(key) > MaxKeyLength {
		return fmt.Errorf("tree: key length %d exceeds max of %d", len(key), MaxKeyLength)
	}
	if len(value) > MaxValueLength {
		return fmt.Errorf("tree: value length %d exceeds max of %d", len(value), MaxValueLength)
	}
	return nil
}

// KV is a (key, value) pair plus the cached hash of the pair. The key is
// never re-encoded as part of the node record: it lives in the backing
// store's own key, so only hash and value travel in the encoded form.
type KV struct {
	key   []byte
	value []byte
	hash  Hash
}

// NewKV builds a KV, computing its hash. Returns an error if key or value
// exceed the configured size limits.
func NewKV(key, value []byte) (KV, error) {
	if err := ValidateKV(key, value); err != nil {
		return KV{}, err
	}
	return KV{key: key, value: value, hash: KVHash(key, value)}, nil
}

// KVFromFields builds a KV from an already-known hash, without
// recomputing it. Used when decoding from the backing store, where the
// hash is trusted to have been validated on write.
func KVFromFields(key, value []byte, hash Hash) KV {
	return KV{key: key, value: value, hash: hash}
}

// Key returns the key.
func (kv KV) Key() []byte { return kv.key }

// Value returns the value.
func (kv KV) Value() []byte { return kv.value }

// Hash returns the cached kv hash.
func (kv KV) Hash() Hash { return kv.hash }

// WithValue returns a copy of kv with its value replaced and hash
// recomputed.
func (kv KV) WithValue(value []byte) (KV, error) {
	if err := ValidateKV(kv.key, value); err != nil {
		return KV{}, err
	}
	kv.value = value
	kv.hash = KVHash(kv.key, value)
	return kv, nil
}

// EncodingLength returns the length of Encode's output.
func (kv KV) EncodingLength() int {
	return HashLength + len(kv.value)
}

// Encode writes the canonical record: hash || value. The key is not
// included; it's implied by the backing store's own key.
func (kv KV) Encode() []byte {
	out := make([]byte, 0, kv.EncodingLength())
	out = append(out, kv.hash[:]...)
	out = append(out, kv.value...)
	return out
}

// DecodeKV parses the output of Encode, given the external key. It does
// not recompute or verify the hash against the value; callers that need
// that guarantee should recompute and compare.
func DecodeKV(key, buf []byte) (KV, error) {
	if len(buf) < HashLength {
		return KV{}, fmt.Errorf("tree: kv record too short (%d bytes)", len(buf))
	}
	hash := HashFromBytes(buf[:HashLength])
	value := append([]byte(nil), buf[HashLength:]...)
	if err := ValidateKV(key, value); err != nil {
		return KV{}, err
	}
	return KV{key: key, value: value, hash: hash}, nil
}
