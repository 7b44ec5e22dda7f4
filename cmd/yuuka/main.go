package main

import (
	"os"

	"github.com/arung-agamani/yuuka/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
