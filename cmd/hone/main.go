package main

import (
	"os"

	"github.com/svetzal/hone/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
