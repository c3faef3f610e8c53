// pepidx - Peptide to protein database indexing tool
package main

import (
	"fmt"
	"os"

	"pepidx/cmd/pepidx/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
