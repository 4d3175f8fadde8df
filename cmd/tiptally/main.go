package main

import (
	"os"

	"github.com/tiptally-dev/tiptally/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
