package main

import (
	"os"

	"github.com/fundview-dev/fundview/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
