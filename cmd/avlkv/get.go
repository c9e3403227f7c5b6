package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jaiminpan/avlkv/db"
)

func runGet(args []string) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	sf := bindStoreFlags(fs)
	key := fs.String("key", "", "key to look up (required)")
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

	value, err := s.Get([]byte(*key))
	if errors.Is(err, db.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "avlkv get: key %q not found\n", *key)
		return fmt.Errorf("not found")
	}
	if err != nil {
		return err
	}
	fmt.Println(string(value))
	return nil
}
