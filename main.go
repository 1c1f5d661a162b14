package main

import (
	"os"

	"github.com/ragdesk/ragdesk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
