package main

import (
	"os"

	"github.com/schlafen318/dual-momentum-sub001/cmd/momentum/commands"
)

// main is the entry point for the momentum CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/momentum [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
