package main

import (
	"os"

	"github.com/piggybank-dev/piggybank/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
