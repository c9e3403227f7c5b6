package tree

import "fmt"

// Fetch is the single polymorphism point for loading a pruned child from
// wherever it's durably stored. Production code backs this with the
// store's KeyValueStore; tests use an in-memory map or PanicSource.
type Fetch interface {
	// FetchByKey retrieves and decodes the node stored under key, or
	// returns an error if it cannot be found.
	FetchByKey(key []byte) (*Node, error)
}

// FetchFunc adapts a plain function to the Fetch interface.
type FetchFunc func(key []byte) (*Node, error)

// FetchByKey implements Fetch.
func (f FetchFunc) FetchByKey(key []byte) (*Node, error) { return f(key) }

// PanicSource is a Fetch that panics whenever called. Useful for trees
// that are known to be fully in memory, where a fetch would indicate a
// missing invariant.
type PanicSource struct{}

// FetchByKey implements Fetch by panicking.
func (PanicSource) FetchByKey(key []byte) (*Node, error) {
	panic(fmt.Sprintf("tree: fetch should not have been called (key=%x)", key))
}
