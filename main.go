package main

import (
	"os"

	"github.com/warm3snow/pytutor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
