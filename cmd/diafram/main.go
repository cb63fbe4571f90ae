package main

import (
	"os"

	"github.com/pwgbots/diafram/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
