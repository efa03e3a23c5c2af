package main

import (
	"os"

	"github.com/livp123/logship/cmd/logship/commands"
	"github.com/livp123/logship/internal/utils/logger"
)

func main() {
	defer logger.Sync()

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
