// Command slotbench measures per-slot lock contention under concurrent
// trace replay.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/slotbench/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// Commands print their own failures; anything else is a usage error
	// from cobra that nothing has reported yet.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
