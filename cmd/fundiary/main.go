// Command fundiary manages diaries, templates, and images in a local store.
package main

import (
	"github.com/joho/godotenv"

	"github.com/fundiary/fundiary/internal/cli"
)

func main() {
	// A .env file in the working directory may set FUNDIARY_* variables.
	_ = godotenv.Load()
	cli.Execute()
}
