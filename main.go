package main

import (
	"os"

	"github.com/sadopc/liftlog/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
