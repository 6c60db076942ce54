package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"customlogger/internal/logs"
)

const followWait = 5 * time.Second

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var errorsOnly bool
	var follow bool
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the most recent entries from the configured log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, key := cfg.Logging.LogFile, "log_file"
			if errorsOnly {
				path, key = cfg.Logging.ErrorLogFile, "error_log_file"
			}
			if strings.TrimSpace(path) == "" {
				return fmt.Errorf("no %s configured", key)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return tailLog(runCtx, cmd.OutOrStdout(), path, limit, follow)
		},
	}

	cmd.Flags().BoolVarP(&errorsOnly, "errors", "e", false, "Read the error log instead of the general log")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new entries until interrupted")
	cmd.Flags().IntVarP(&limit, "lines", "n", 20, "Number of entries to show")
	return cmd
}

func tailLog(ctx context.Context, out io.Writer, path string, limit int, follow bool) error {
	result, err := logs.Tail(ctx, path, logs.TailOptions{Offset: -1, Limit: limit})
	if err != nil {
		return err
	}
	printEntries(out, result.Entries)

	for follow {
		result, err = logs.Tail(ctx, path, logs.TailOptions{Offset: result.Offset, Follow: true, Wait: followWait})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		printEntries(out, result.Entries)
	}
	return nil
}

func printEntries(out io.Writer, entries []logs.Entry) {
	for _, entry := range entries {
		fmt.Fprintln(out, entry.String())
	}
}
