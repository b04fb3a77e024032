package main

import (
	"os"

	"github.com/Sternrassler/character-browser/cmd/character-browser/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
