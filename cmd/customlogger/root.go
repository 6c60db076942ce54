package main

import (
	"github.com/spf13/cobra"

	"customlogger/internal/hooks"
)

func newRootCommand(state *hooks.State) *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag, state)

	rootCmd := &cobra.Command{
		Use:           "customlogger",
		Short:         "Column-aligned logging with crash hooks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDemoCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))

	return rootCmd
}
