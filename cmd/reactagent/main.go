// Package main provides the reactagent command line. It runs an autonomous
// ReAct coding agent against a local repository.
package main

import (
	"fmt"
	"os"
)

// version is overridden at build time with -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd(defaultDependencies()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
