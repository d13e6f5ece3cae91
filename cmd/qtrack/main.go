package main

import (
	"github.com/joho/godotenv"

	"github.com/cuongbtq/quantum-tracker/internal/cli"
)

func main() {
	// Flag defaults come from the environment, so .env must load first
	_ = godotenv.Load()

	cli.Execute()
}
