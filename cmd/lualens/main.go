package main

import (
	"os"

	"github.com/lualens/lualens/cmd/lualens/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
