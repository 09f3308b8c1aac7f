package main

import (
	"fmt"
	"log"
	"os"
)

const usage = `usage: engine <command> [flags]

commands:
  extract       run extraction for enabled sources, then merge corpora
  merge-global  rebuild the cross-source merged corpus per career
  stats         show corpus sizes and recent run history
  set-key       store a vendor API key in the OS keychain
`

func main() {
	log.SetFlags(log.LstdFlags)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "extract":
		err = runExtract(os.Args[2:])
	case "merge-global":
		err = runMergeGlobal(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "set-key":
		err = runSetKey(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}
