// Package main provides the entry point for ripple5.
// ripple5 is a cycle-accurate simulator of a small 16-bit RISC processor's
// classic 5-stage in-order pipeline.
//
// For the full CLI, use: go run ./cmd/ripple5
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("ripple5 - 5-stage in-order pipeline simulator")
	fmt.Println("")
	fmt.Println("Usage: ripple5 [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config    Path to a sim config JSON file")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/ripple5' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/ripple5' instead.")
	}
}
