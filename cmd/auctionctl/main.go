package main

import (
	"os"

	"github.com/rickgao/mock-auction/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
