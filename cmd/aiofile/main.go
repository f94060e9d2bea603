package main

import (
	"os"

	"github.com/mrusso91/aiofile/cmd/aiofile/commands"

	// Import prometheus metrics to register constructors.
	_ "github.com/mrusso91/aiofile/pkg/metrics/prometheus"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintErr("Error: %v", err)
		os.Exit(1)
	}
}
