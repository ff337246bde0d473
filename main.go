package main

import (
	"os"

	"github.com/mcpjungle/toolgate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
