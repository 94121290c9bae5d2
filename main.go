package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"mixterm/cli"
)

func main() {
	// Optional .env for MIXTERM_ACCESS_TOKEN and friends.
	_ = godotenv.Load()

	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
