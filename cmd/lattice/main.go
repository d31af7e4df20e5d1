// Command lattice hosts the bundled terminal applications under one
// orchestrator.
package main

import (
	"context"
	"os"

	"github.com/odvcencio/lattice/pkg/terminal"
)

func main() {
	cmd := newRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		terminal.New().Error("lattice", describe(err))
		os.Exit(exitCodeForError(err))
	}
}
