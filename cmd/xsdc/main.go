package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/skaldic/xsdc/internal/cli"
	"github.com/skaldic/xsdc/pkg/xsdc"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(xsdc.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(xsdc.ExitCodeForError(err))
	}
}
