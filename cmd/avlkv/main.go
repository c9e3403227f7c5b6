// Command avlkv is a small front-end for opening a store, reading and
// writing keys, producing Merkle proofs, and replicating a store from
// a chunk stream.
//
// Usage:
//
//	avlkv <command> [flags]
//
// Commands:
//
//	get      print the value stored under a key
//	put      write a single key/value pair
//	prove    build a Merkle proof for one or more keys and print it as hex
//	chunks   dump a store's chunk-sync proof stream to a directory
//	restore  replicate a store from a directory of chunk files
package main

import (
	"fmt"
	"log"
	"os"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	log.SetFlags(0)

	if len(args) == 0 {
		printUsage()
		return 2
	}

	if args[0] == "-version" || args[0] == "--version" {
		fmt.Printf("avlkv %s (commit %s)\n", version, commit)
		return 0
	}

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "get":
		err = runGet(rest)
	case "put":
		err = runPut(rest)
	case "prove":
		err = runProve(rest)
	case "chunks":
		err = runChunks(rest)
	case "restore":
		err = runRestore(rest)
	default:
		fmt.Fprintf(os.Stderr, "avlkv: unknown command %q\n\n", cmd)
		printUsage()
		return 2
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "avlkv %s: %v\n", cmd, err)
		return 1
	}
	return 0
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: avlkv <get|put|prove|chunks|restore> [flags]")
	fmt.Fprintln(os.Stderr, "       avlkv -version")
}
