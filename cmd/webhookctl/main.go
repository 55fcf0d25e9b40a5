package main

import (
	"os"

	"github.com/marcelsud/clinic-webhooks/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
