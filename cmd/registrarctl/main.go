// Command registrarctl is the terminal client for a namelease server.
package main

import (
	"os"

	"namelease/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
