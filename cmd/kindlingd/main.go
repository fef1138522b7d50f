// Package main is the entry point for the kindlingd store daemon.
package main

import (
	"os"

	daemoncmd "github.com/kindling-io/kindling/internal/daemon/cmd"
)

func main() {
	if err := daemoncmd.Execute(); err != nil {
		os.Exit(1)
	}
}
