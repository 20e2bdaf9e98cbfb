package main

import (
	"os"

	"github.com/teranos/wiregen/cmd/wiregen/commands"
	"github.com/teranos/wiregen/logger"
)

func main() {
	defer logger.Cleanup()

	if err := commands.NewRootCmd().Execute(); err != nil {
		commands.PrintError(os.Stderr, err)
		logger.Cleanup()
		os.Exit(commands.ExitCode(err))
	}
}
