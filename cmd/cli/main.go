// Package main is the entry point for the ispbill CLI.
package main

import (
	"fmt"
	"os"

	"isp-billing/cmd/cli/cmd"
	"isp-billing/internal/logging"
)

func main() {
	err := cmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
