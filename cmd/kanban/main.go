package main

import (
	"fmt"
	"os"

	"github.com/tgienger/kanban/internal/cli"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cli.Execute(fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)); err != nil {
		os.Exit(1)
	}
}
