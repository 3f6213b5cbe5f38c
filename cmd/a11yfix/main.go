// Package main is the entry point for the a11yfix CLI.
package main

import (
	"os"

	"github.com/jmylchreest/a11yfix/cmd/a11yfix/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
