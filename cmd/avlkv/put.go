package main

import (
	"flag"
	"fmt"

	"github.com/jaiminpan/avlkv/tree"
)

func runPut(args []string) error {
	fs := flag.NewFlagSet("put", flag.ContinueOnError)
	sf := bindStoreFlags(fs)
	key := fs.String("key", "", "key to write (required)")
	value := fs.String("value", "", "value to write")
	del := fs.Bool("delete", false, "delete -key instead of writing -value")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *key == "" {
		return fmt.Errorf("-key is required")
	}

	s, err := sf.open()
	if err != nil {
		return err
	}
	defer s.Close()

	entry := tree.BatchEntry{Key: []byte(*key), Op: tree.Put, Value: []byte(*value)}
	if *del {
		entry = tree.BatchEntry{Key: []byte(*key), Op: tree.Delete}
	}
	if err := s.Apply(tree.Batch{entry}); err != nil {
		return err
	}
	fmt.Printf("root %s\n", s.RootHash())
	return nil
}
