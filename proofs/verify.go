package proofs

import "github.com/jaiminpan/avlkv/tree"

// Verify decodes and executes an encoded proof, checking its computed
// root hash against expectedHash, and returns the resulting Map of
// proven key/value data.
func Verify(encoded []byte, expectedHash tree.Hash) (*Map, error) {
	ops, err := Decode(encoded)
	if err != nil {
		return nil, err
	}

	builder := NewMapBuilder()
	root, err := Execute(ops, true, builder.Insert)
	if err != nil {
		return nil, err
	}
	if got := root.Hash(); got != expectedHash {
		return nil, &HashMismatchError{Got: got.String(), Want: expectedHash.String()}
	}
	return builder.Build(), nil
}

// VerifyQuery verifies an encoded proof against a query and expected
// root hash. Each single-key item contributes one entry: the proven
// value, or nil for a key the proof establishes is absent. Each range
// item contributes one entry per proven key inside the range.
//
// Deprecated: prefer Verify, which returns a Map supporting arbitrary
// Get/Range lookups over everything the proof actually covers, rather
// than only the keys named up front.
func VerifyQuery(encoded []byte, query []QueryItem, expectedHash tree.Hash) ([][]byte, error) {
	m, err := Verify(encoded, expectedHash)
	if err != nil {
		return nil, err
	}

	out := make([][]byte, 0, len(query))
	for _, item := range query {
		lower := item.LowerBound()
		upper, inclusive := item.UpperBound()
		if bytesEqualQuery(lower, upper) && inclusive {
			value, ok, err := m.Get(lower)
			if err != nil {
				return nil, err
			}
			if !ok {
				out = append(out, nil)
			} else {
				out = append(out, value)
			}
			continue
		}

		end := upper
		rangeEntries, err := m.Range(lower, rangeEnd(upper, inclusive, end))
		if err != nil {
			return nil, err
		}
		for _, e := range rangeEntries {
			out = append(out, e[1])
		}
	}
	return out, nil
}

func bytesEqualQuery(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// rangeEnd converts an inclusive upper bound into the exclusive end
// Map.Range expects: a nil end means unbounded, which never applies
// here since query ranges always carry an explicit upper bound -- for
// an inclusive bound we widen by appending a zero byte, which sorts
// just after any key sharing that prefix length and thus includes the
// bound key itself in the half-open scan Map.Range performs.
func rangeEnd(upper []byte, inclusive bool, fallback []byte) []byte {
	if !inclusive {
		return upper
	}
	widened := make([]byte, len(upper)+1)
	copy(widened, upper)
	return widened
}
