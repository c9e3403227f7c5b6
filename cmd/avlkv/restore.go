package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jaiminpan/avlkv"
)

func runRestore(args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	src := fs.String("chunks", "", "directory of chunk files written by \"avlkv chunks\" (required)")
	dest := fs.String("dest", "", "destination store directory (must not exist)")
	mem := fs.Bool("memory", false, "restore into an in-memory store instead of -dest")
	rootHash := fs.String("root", "", "expected root hash, hex-encoded (required)")
	keepDepth := fs.Int("keepdepth", 4, "tree levels the restored store keeps resident after committing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *src == "" {
		return fmt.Errorf("-chunks is required")
	}
	if *rootHash == "" {
		return fmt.Errorf("-root is required")
	}
	if !*mem && *dest == "" {
		return fmt.Errorf("either -dest or -memory is required")
	}

	want, err := parseHash(*rootHash)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(*src)
	if err != nil {
		return err
	}
	statedLength := 0
	for _, e := range entries {
		if e.Name() != trunkFileName {
			statedLength++
		}
	}

	r, err := avlkv.NewRestorer(*dest, avlkv.Options{
		InMemory:  *mem,
		KeepDepth: *keepDepth,
	}, want, statedLength)
	if err != nil {
		return err
	}

	trunk, err := os.ReadFile(filepath.Join(*src, trunkFileName))
	if err != nil {
		return fmt.Errorf("reading trunk chunk: %w", err)
	}
	if _, err := r.ProcessChunk(trunk); err != nil {
		return fmt.Errorf("processing trunk chunk: %w", err)
	}

	for i := 0; i < statedLength; i++ {
		name := leafFileName(i)
		chunk, err := os.ReadFile(filepath.Join(*src, name))
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		remaining, err := r.ProcessChunk(chunk)
		if err != nil {
			return fmt.Errorf("processing %s: %w", name, err)
		}
		fmt.Printf("processed %s, %d remaining\n", name, remaining)
	}

	store, err := r.Finalize()
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Printf("restored root %s\n", store.RootHash())
	return nil
}
