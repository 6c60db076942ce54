package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"customlogger/internal/version"
)

func newVersionCommand() *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Print the customlogger version",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			res := version.Resolve()
			out := cmd.OutOrStdout()
			if !long {
				// keep output simple for scripting
				fmt.Fprintln(out, res.String())
				return nil
			}
			revision := res.Revision
			if revision == "" {
				revision = "unknown"
			}
			rows := [][]string{
				{"Version", res.Version},
				{"Source", string(res.Source)},
				{"Revision", revision},
				{"Modified", yesNo(res.Modified)},
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show where the version came from")
	return cmd
}
