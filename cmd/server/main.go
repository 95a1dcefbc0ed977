// Package main is the scry-study command: it serves the study API and
// provides the migrate, catalog import and token maintenance commands.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
