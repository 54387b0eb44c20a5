// Package main provides the entry point for the checkenv CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/checkenv/cmd/checkenv/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
