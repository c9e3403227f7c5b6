package tree

import (
	"fmt"
)

// EncodingLength returns the length of Encode's output in bytes.
func (n *Node) EncodingLength() int {
	length := 1 + 1 // has_left, has_right
	if n.Left != nil {
		length += 1 + len(n.Left.Key) + HashLength + 2
	}
	if n.Right != nil {
		length += 1 + len(n.Right.Key) + HashLength + 2
	}
	length += n.kv.EncodingLength()
	return length
}

// Encode serializes n into the canonical backing-store record described
// in spec §4.2. It is an error to encode a node with a Modified link: its
// hash has not been computed yet, so there is nothing correct to write.
func (n *Node) Encode() ([]byte, error) {
	out := make([]byte, 0, n.EncodingLength())
	var err error
	out, err = encodeLink(out, n.Left)
	if err != nil {
		return nil, fmt.Errorf("tree: encoding left link: %w", err)
	}
	out, err = encodeLink(out, n.Right)
	if err != nil {
		return nil, fmt.Errorf("tree: encoding right link: %w", err)
	}
	out = append(out, n.kv.Encode()...)
	return out, nil
}

func encodeLink(out []byte, l *Link) ([]byte, error) {
	if l == nil {
		return append(out, 0), nil
	}
	if l.Kind == LinkModified {
		return nil, fmt.Errorf("tree: cannot encode a Modified link")
	}
	if len(l.Key) > MaxKeyLength {
		return nil, fmt.Errorf("tree: link key length %d exceeds max of %d", len(l.Key), MaxKeyLength)
	}
	out = append(out, 1)
	out = append(out, byte(len(l.Key)))
	out = append(out, l.Key...)
	out = append(out, l.Hash[:]...)
	out = append(out, l.LeftHeight, l.RightHeight)
	return out, nil
}

// Decode parses the output of Encode, given the node's own external key
// (i.e. the backing-store key under which buf was stored). Every link
// decoded from the record is a Reference: the children are not fetched.
func Decode(key, buf []byte) (*Node, error) {
	n := &Node{}
	rest := buf

	left, rest, err := decodeLink(rest)
	if err != nil {
		return nil, fmt.Errorf("tree: decoding left link: %w", err)
	}
	n.Left = left

	right, rest, err := decodeLink(rest)
	if err != nil {
		return nil, fmt.Errorf("tree: decoding right link: %w", err)
	}
	n.Right = right

	kv, err := DecodeKV(key, rest)
	if err != nil {
		return nil, fmt.Errorf("tree: decoding kv: %w", err)
	}
	n.kv = kv
	return n, nil
}

func decodeLink(buf []byte) (*Link, []byte, error) {
	if len(buf) < 1 {
		return nil, nil, fmt.Errorf("tree: truncated record (missing has-child byte)")
	}
	has, rest := buf[0], buf[1:]
	switch has {
	case 0:
		return nil, rest, nil
	case 1:
		if len(rest) < 1 {
			return nil, nil, fmt.Errorf("tree: truncated record (missing key length)")
		}
		keyLen := int(rest[0])
		rest = rest[1:]
		if len(rest) < keyLen+HashLength+2 {
			return nil, nil, fmt.Errorf("tree: truncated record (short link body)")
		}
		key := append([]byte(nil), rest[:keyLen]...)
		rest = rest[keyLen:]
		hash := HashFromBytes(rest[:HashLength])
		rest = rest[HashLength:]
		leftHeight, rightHeight := rest[0], rest[1]
		rest = rest[2:]
		return &Link{
			Kind:        LinkReference,
			Hash:        hash,
			LeftHeight:  leftHeight,
			RightHeight: rightHeight,
			Key:         key,
		}, rest, nil
	default:
		return nil, nil, fmt.Errorf("tree: invalid has-child byte %d", has)
	}
}
