package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"otterpack/internal/failures"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		if code, ok := failures.ExitCode(err); ok && code > 0 && code < 126 {
			os.Exit(code)
		}
		os.Exit(1)
	}
}
