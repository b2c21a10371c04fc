package main

import (
	"os"

	"github.com/mcostea/engram/internal/engram/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
