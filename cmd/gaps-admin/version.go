package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gaps/internal/version"
)

func newVersionCmd(_ *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info().String())
		},
	}
}
