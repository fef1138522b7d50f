// Package main is the entry point for the kindling CLI/TUI.
package main

import (
	"os"

	"github.com/kindling-io/kindling/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
