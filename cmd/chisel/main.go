// Package main is the entry point for the chisel CLI.
package main

import (
	"os"

	"github.com/chiselkit/chisel/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
