// Package main provides the entry point for the grocer CLI.
package main

import (
	"os"

	"github.com/randalmurphal/grocer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		cli.PrintError(err)
		os.Exit(1)
	}
}
