package main

import (
	"fmt"

	"github.com/iov-one/pkconv"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tool version and the schema version it writes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (schema %s)\n", pkconv.BuildVersion(), pkconv.Current)
			return nil
		},
	}
}
