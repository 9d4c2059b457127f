// Command foostats ingests web and Gemini access logs, replicates peer
// snapshots, and merges them into a single day's view.
package main

import (
	"fmt"
	"os"

	"github.com/runnerr0/foostats/internal/cli"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
