// Command recall is a persistent, policy-gated memory store for
// coding agents, backed by per-category JSON documents with advisory
// cross-process locking.
package main

import (
	"fmt"
	"os"

	"github.com/entrhq/recall/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
