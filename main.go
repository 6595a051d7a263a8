package main

import (
	"github.com/joho/godotenv"

	"github.com/eegvizlab/eegviz/cmd"
)

func main() {
	// Optional .env for local overrides; absence is not an error.
	_ = godotenv.Load()

	cmd.Execute()
}
