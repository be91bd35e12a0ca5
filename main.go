package main

import (
	"fmt"
	"os"

	"github.com/jlintus/fsaudit/internal/cli"
)

// version is set at build time via ldflags.
//
//nolint:gochecknoglobals // Build-time variable
var version = "dev"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
