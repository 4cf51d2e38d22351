// Package main provides the filtrage CLI for filtering JSON rows with column
// filter expressions and managing saved filters.
package main

import (
	"fmt"
	"os"

	"pkgconsole/cmd/filtrage/cmd"
)

func main() {
	if err := cmd.NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
