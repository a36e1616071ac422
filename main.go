// main is the entry point for the repotally CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/repotally/repotally/cmd"
	"github.com/repotally/repotally/core"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// Gate verdicts are already printed; only the exit code matters.
		if !errors.Is(err, core.ErrGateFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
