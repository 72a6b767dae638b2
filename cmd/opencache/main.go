package main

import (
	"github.com/joho/godotenv"

	"github.com/sarchlab/opencache/cmd/opencache/cmd"
)

func main() {
	// Flags can be seeded from a local .env file; a missing file is fine.
	_ = godotenv.Load()

	cmd.Execute()
}
