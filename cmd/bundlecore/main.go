/*
# Module: cmd/bundlecore/main.go
CLI entry point.

## Linked Modules
- [root](./root.go) - Root command tree

## Tags
cli, entrypoint
*/

package main

import (
	"fmt"
	"os"
)

const (
	// Version is the CLI's release version.
	Version = "0.1.0"
	// Name is the CLI's display name.
	Name = "bundlecore"
)

func main() {
	if err := registerCompletions(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
