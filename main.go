// Package main provides a short pointer to the load value predictor CLI.
//
// For the full CLI, use: go run ./cmd/lvpsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("load-value-predictor - LCT/LVPT/CVU load value prediction simulator")
	fmt.Println("")
	fmt.Println("Usage: lvpsim [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -trace        Path to a trace file (L/S text format)")
	fmt.Println("  -config       Path to a timing configuration JSON file")
	fmt.Println("  -lct-entries  LCT/LVPT table size (power of two)")
	fmt.Println("  -cvu-entries  CVU capacity")
	fmt.Println("  -downgrade    cvu_invalidate LCT-downgrade policy: store or load")
	fmt.Println("  -csv          Output results in CSV format")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/lvpsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/lvpsim' instead.")
	}
}
