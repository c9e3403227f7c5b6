package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

// trunkFileName and leafFileName name the chunk files written by
// "chunks" and read back by "restore", in the order ProcessChunk
// expects them: the trunk chunk first, then leaf chunks in ascending
// index order.
const trunkFileName = "trunk.chunk"

func leafFileName(i int) string { return fmt.Sprintf("leaf-%04d.chunk", i) }

func runChunks(args []string) error {
	fs := flag.NewFlagSet("chunks", flag.ContinueOnError)
	sf := bindStoreFlags(fs)
	out := fs.String("out", "", "directory to write chunk files into (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("-out is required")
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	s, err := sf.open()
	if err != nil {
		return err
	}
	defer s.Close()

	it, err := s.Chunks()
	if err != nil {
		return err
	}

	trunk, ok := it.Next()
	if !ok {
		return fmt.Errorf("store is empty, nothing to chunk")
	}
	if err := os.WriteFile(filepath.Join(*out, trunkFileName), trunk, 0o644); err != nil {
		return err
	}

	i := 0
	for {
		chunk, ok := it.Next()
		if !ok {
			break
		}
		if err := os.WriteFile(filepath.Join(*out, leafFileName(i)), chunk, 0o644); err != nil {
			return err
		}
		i++
	}

	fmt.Printf("root %s\n", s.RootHash())
	fmt.Printf("wrote 1 trunk chunk and %d leaf chunks to %s\n", i, *out)
	return nil
}
