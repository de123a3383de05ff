package main

import (
	"fmt"
	"os"

	"github.com/soba-dev/soba/internal/cli"
	"github.com/soba-dev/soba/pkg/errors"
)

// version, commit, and date are populated by the release build via
// -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cli.Execute(version, commit, date); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a returned error to a process exit code per spec §7: a
// Configuration error (e.g. workflow.interval below the floor) fails fast
// with exit code 2; every other error exits 1.
func exitCodeFor(err error) int {
	if errors.IsValidationError(err) {
		return 2
	}
	return 1
}
