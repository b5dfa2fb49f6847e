// Package main is the entry point for the cost-projections CLI.
package main

import (
	"os"

	"cost-projections/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
