package main

import (
	"encoding/hex"
	"flag"
	"fmt"

	"github.com/jaiminpan/avlkv/proofs"
)

func runProve(args []string) error {
	fs := flag.NewFlagSet("prove", flag.ContinueOnError)
	sf := bindStoreFlags(fs)
	var keys stringList
	fs.Var(&keys, "key", "key to prove (repeatable)")
	start := fs.String("start", "", "inclusive lower bound of a range query")
	end := fs.String("end", "", "upper bound of a range query (see -end-inclusive)")
	endInclusive := fs.Bool("end-inclusive", false, "treat -end as inclusive")
	if err := fs.Parse(args); err != nil {
		return err
	}

	q := proofs.NewQuery()
	for _, k := range keys {
		q.InsertKey([]byte(k))
	}
	if *start != "" || *end != "" {
		if *start == "" || *end == "" {
			return fmt.Errorf("-start and -end must be given together")
		}
		if *endInclusive {
			q.InsertRangeInclusive([]byte(*start), []byte(*end))
		} else {
			q.InsertRange([]byte(*start), []byte(*end))
		}
	}
	if q.Len() == 0 {
		return fmt.Errorf("at least one -key or a -start/-end range is required")
	}

	s, err := sf.open()
	if err != nil {
		return err
	}
	defer s.Close()

	encoded, err := s.Prove(q.Items())
	if err != nil {
		return err
	}
	fmt.Printf("root %s\n", s.RootHash())
	fmt.Println(hex.EncodeToString(encoded))
	return nil
}
