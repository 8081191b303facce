package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gaps/internal/groupconfig"
	"gaps/internal/groups"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration embedded in group descriptions",
	}
	cmd.AddCommand(newConfigParseCmd(opts))
	return cmd
}

func newConfigParseCmd(opts *rootOptions) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a description read from stdin and print the resolved category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			desc, err := readDescription(cmd.InOrStdin())
			if err != nil {
				return err
			}
			r := groupconfig.Parse(desc)
			g := groups.Group{Email: email, Description: desc}
			groups.UpdateConfig(&g, opts.requestor())

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return opts.printJSON(out, map[string]any{
					"shape":       r.Shape.String(),
					"config":      r.Config.Map(),
					"category":    g.Category,
					"description": g.Description,
				})
			}
			fmt.Fprintf(out, "shape:    %s\n", r.Shape)
			fmt.Fprintf(out, "category: %s\n", g.Category)
			for _, k := range r.Config.Keys() {
				v, _ := r.Config.Get(k)
				fmt.Fprintf(out, "config.%s: %s\n", k, v)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Group email used for the fallback category")
	return cmd
}
