// Command safedi reads module summaries, builds and validates the
// dependency graph, and emits generated source plus an optional DOT
// visualization, using the same cobra command-tree wiring a scaffolding
// CLI uses for its subcommands.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
