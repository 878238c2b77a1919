package main

import (
	"os"

	"github.com/b0risfosso/lang/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
