// Package main is the entry point for the aibtc CLI.
package main

import (
	"os"

	"github.com/aibtcdev/aibtc-core/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
