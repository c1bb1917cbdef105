// Command loom is the Loom CLI: project scaffolding and a terminal client
// for the state inspector of a running application.
package main

import (
	"fmt"
	"os"

	"github.com/go-loom/loom/cmd/loom/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
