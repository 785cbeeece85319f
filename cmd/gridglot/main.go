package main

import (
	"os"

	"github.com/gridglot/gridglot/cmd/gridglot/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
