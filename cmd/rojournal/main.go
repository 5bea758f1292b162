package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/rojournal-dev/rojournal/internal/commands"
)

func main() {
	// .env is optional; DATABASE_URL may come from the environment.
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
