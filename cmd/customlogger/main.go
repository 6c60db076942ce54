package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"customlogger/internal/hooks"
)

func main() {
	state := hooks.Process()
	defer state.RecoverMain()

	cmd := newRootCommand(state)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
