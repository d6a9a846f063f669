// Package main provides the entry point for the plokecore CLI.
package main

import (
	"os"

	"github.com/plokeai/plokecore/cmd/plokecore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
