// Package main provides the entry point for the ragtime CLI.
package main

import (
	"os"

	"github.com/ragtime-dev/ragtime/cmd/ragtime/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
