package main

import (
	"os"

	"github.com/kbatisse/calsat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
