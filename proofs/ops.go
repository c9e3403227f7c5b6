package proofs

import (
	"fmt"

	"github.com/jaiminpan/avlkv/tree"
)

// OpKind identifies a proof stack-machine instruction.
type OpKind uint8

const (
	// OpPush pushes a Node onto the verification stack.
	OpPush OpKind = iota
	// OpParent pops a parent (the top item) then a child, attaches the
	// child on the parent's left, and pushes the parent.
	OpParent
	// OpChild pops a child then a parent, attaches the child on the
	// parent's right, and pushes the parent.
	OpChild
)

// Op is one instruction of a proof's reverse-Polish opcode stream.
type Op struct {
	Kind OpKind
	Node Node // only meaningful when Kind == OpPush
}

// Opcode tags, one byte each, matching the wire encoding exactly.
const (
	tagPushHash   byte = 0x01
	tagPushKVHash byte = 0x02
	tagPushKV     byte = 0x03
	tagParent     byte = 0x10
	tagChild      byte = 0x11
)

// Push builds a Push op.
func Push(n Node) Op { return Op{Kind: OpPush, Node: n} }

// Parent builds a Parent op.
func Parent() Op { return Op{Kind: OpParent} }

// Child builds a Child op.
func Child() Op { return Op{Kind: OpChild} }

// EncodingLength returns the number of bytes Encode appends for op.
func (op Op) EncodingLength() int {
	switch op.Kind {
	case OpPush:
		switch op.Node.Kind {
		case NodeHash, NodeKVHash:
			return 1 + tree.HashLength
		case NodeKV:
			return 1 + 1 + len(op.Node.Key) + 2 + len(op.Node.Value)
		}
	case OpParent, OpChild:
		return 1
	}
	return 0
}

// Encode appends op's wire encoding to dst and returns the result.
func (op Op) Encode(dst []byte) ([]byte, error) {
	switch op.Kind {
	case OpPush:
		switch op.Node.Kind {
		case NodeHash:
			dst = append(dst, tagPushHash)
			dst = append(dst, op.Node.Hash[:]...)
			return dst, nil
		case NodeKVHash:
			dst = append(dst, tagPushKVHash)
			dst = append(dst, op.Node.Hash[:]...)
			return dst, nil
		case NodeKV:
			if len(op.Node.Key) > 255 {
				return nil, fmt.Errorf("proofs: key too long to encode (%d bytes)", len(op.Node.Key))
			}
			if len(op.Node.Value) > 65535 {
				return nil, fmt.Errorf("proofs: value too long to encode (%d bytes)", len(op.Node.Value))
			}
			dst = append(dst, tagPushKV, byte(len(op.Node.Key)))
			dst = append(dst, op.Node.Key...)
			dst = append(dst, byte(len(op.Node.Value)>>8), byte(len(op.Node.Value)))
			dst = append(dst, op.Node.Value...)
			return dst, nil
		default:
			return nil, fmt.Errorf("proofs: unknown node kind %d", op.Node.Kind)
		}
	case OpParent:
		return append(dst, tagParent), nil
	case OpChild:
		return append(dst, tagChild), nil
	default:
		return nil, fmt.Errorf("proofs: unknown op kind %d", op.Kind)
	}
}

// Encode serializes a full op sequence to a single byte slice.
func Encode(ops []Op) ([]byte, error) {
	var out []byte
	for _, op := range ops {
		var err error
		out, err = op.Encode(out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Decoder is a forward-only iterator over an encoded op stream.
type Decoder struct {
	buf []byte
	off int
}

// NewDecoder returns a Decoder over buf.
func NewDecoder(buf []byte) *Decoder { return &Decoder{buf: buf} }

// Done reports whether the decoder has consumed the whole buffer.
func (d *Decoder) Done() bool { return d.off >= len(d.buf) }

// Next decodes and returns the next op, advancing past it. Returns an
// error (and leaves the decoder stopped) on truncated input or an
// unrecognized opcode tag.
func (d *Decoder) Next() (Op, error) {
	if d.Done() {
		return Op{}, fmt.Errorf("proofs: decode past end of buffer")
	}
	tag := d.buf[d.off]
	rest := d.buf[d.off+1:]
	switch tag {
	case tagPushHash, tagPushKVHash:
		if len(rest) < tree.HashLength {
			return Op{}, fmt.Errorf("proofs: truncated hash push at offset %d", d.off)
		}
		h := tree.HashFromBytes(rest[:tree.HashLength])
		d.off += 1 + tree.HashLength
		if tag == tagPushHash {
			return Push(PushHash(h)), nil
		}
		return Push(PushKVHash(h)), nil

	case tagPushKV:
		if len(rest) < 1 {
			return Op{}, fmt.Errorf("proofs: truncated kv push at offset %d", d.off)
		}
		keyLen := int(rest[0])
		rest = rest[1:]
		if len(rest) < keyLen+2 {
			return Op{}, fmt.Errorf("proofs: truncated kv push at offset %d", d.off)
		}
		key := append([]byte(nil), rest[:keyLen]...)
		rest = rest[keyLen:]
		valLen := int(rest[0])<<8 | int(rest[1])
		rest = rest[2:]
		if len(rest) < valLen {
			return Op{}, fmt.Errorf("proofs: truncated kv push at offset %d", d.off)
		}
		value := append([]byte(nil), rest[:valLen]...)
		d.off += 1 + 1 + keyLen + 2 + valLen
		return Push(PushKV(key, value)), nil

	case tagParent:
		d.off++
		return Parent(), nil

	case tagChild:
		d.off++
		return Child(), nil

	default:
		return Op{}, fmt.Errorf("proofs: unknown opcode byte 0x%02x at offset %d", tag, d.off)
	}
}

// Decode decodes buf into a full op sequence.
func Decode(buf []byte) ([]Op, error) {
	d := NewDecoder(buf)
	var ops []Op
	for !d.Done() {
		op, err := d.Next()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}
