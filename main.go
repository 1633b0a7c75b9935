package main

import (
	"os"

	"github.com/jol333/TaskTimer/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
