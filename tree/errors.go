package tree

import "errors"

// ErrNotSorted is returned by ApplyTo when a batch is not in strictly
// increasing key order (duplicate keys count as a violation).
var ErrNotSorted = errors.New("tree: batch is not sorted by strictly increasing key")
