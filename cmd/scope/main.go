package main

import (
	"os"

	"github.com/wonny/tickerscope/cmd/scope/commands"
)

// main is the entry point for the tickerscope CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/scope [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
