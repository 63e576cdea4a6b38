package main

import (
	"os"

	"github.com/msto63/frege/cmd/frege/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
