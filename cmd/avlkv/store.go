package main

import (
	"encoding/hex"
	"flag"
	"fmt"

	"github.com/jaiminpan/avlkv"
	"github.com/jaiminpan/avlkv/tree"
)

// storeFlags binds the -dir/-memory/-keepdepth flags common to every
// subcommand that operates on an existing store.
type storeFlags struct {
	dir       string
	mem       bool
	keepDepth int
}

func bindStoreFlags(fs *flag.FlagSet) *storeFlags {
	sf := &storeFlags{}
	fs.StringVar(&sf.dir, "dir", "", "store directory (required unless -memory)")
	fs.BoolVar(&sf.mem, "memory", false, "use an in-memory store instead of -dir")
	fs.IntVar(&sf.keepDepth, "keepdepth", 4, "tree levels Apply keeps resident after committing")
	return sf
}

func (sf *storeFlags) open() (*avlkv.Store, error) {
	return open(sf.dir, sf.mem, sf.keepDepth)
}

func open(dir string, mem bool, keepDepth int) (*avlkv.Store, error) {
	if !mem && dir == "" {
		return nil, fmt.Errorf("either -dir or -memory is required")
	}
	return avlkv.Open(dir, avlkv.Options{
		Dir:       dir,
		InMemory:  mem,
		KeepDepth: keepDepth,
	})
}

// stringList implements flag.Value, collecting one entry per -flag
// occurrence in encounter order.
type stringList []string

func (l *stringList) String() string { return fmt.Sprint([]string(*l)) }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// parseHash decodes a hex-encoded root hash, as printed by put/prove/chunks.
func parseHash(s string) (tree.Hash, error) {
	var h tree.Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	if len(b) != tree.HashLength {
		return h, fmt.Errorf("hash %q: want %d bytes, got %d", s, tree.HashLength, len(b))
	}
	copy(h[:], b)
	return h, nil
}
