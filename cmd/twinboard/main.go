// cmd/twinboard/main.go
//
// Entry point for the twinboard CLI. Running `twinboard` from any project
// directory initializes a .twinboard/ folder there and launches the TUI;
// `twinboard stubd` serves a local backend for offline work.

package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
