package main

import (
	"os"

	"github.com/dalemusser/wardwatch/internal/cli"
)

func main() {
	if err := cli.Root(cli.Open).Execute(); err != nil {
		os.Exit(1)
	}
}
