package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gaps/internal/groups"
)

type groupOutput struct {
	ID          int64             `json:"id"`
	Email       string            `json:"email"`
	Name        string            `json:"name,omitempty"`
	Category    string            `json:"category"`
	Description string            `json:"description"`
	Config      map[string]string `json:"config,omitempty"`
	Strategy    string            `json:"strategy,omitempty"`
}

func toGroupOutput(g groups.Group) groupOutput {
	return groupOutput{
		ID:          g.ID,
		Email:       g.Email,
		Name:        g.Name,
		Category:    g.Category,
		Description: g.Description,
		Config:      g.Config.Map(),
	}
}

func newGroupsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List, resolve, move and import groups",
	}
	cmd.AddCommand(
		newGroupsListCmd(opts),
		newGroupsResolveCmd(opts),
		newGroupsMoveCmd(opts),
		newGroupsSyncCmd(opts),
		newGroupsImportCmd(opts),
	)
	return cmd
}

func parseGroupID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("group id 不合法: %q", raw)
	}
	return id, nil
}

func newGroupsListCmd(opts *rootOptions) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := opts.open()
			if err != nil {
				return err
			}
			defer rt.close()

			rows, err := rt.store.ListGroups(cmd.Context(), category)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				list := make([]groupOutput, 0, len(rows))
				for _, r := range rows {
					list = append(list, groupOutput{ID: r.ID, Email: r.Email, Name: r.Name, Category: r.Category, Description: r.Description})
				}
				return opts.printJSON(out, list)
			}
			for _, r := range rows {
				fmt.Fprintf(out, "%d\t%s\t%s\n", r.ID, r.Email, r.Category)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only list groups in this category")
	return cmd
}

func newGroupsResolveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id>",
		Short: "Show the category resolved from a group's description (no writes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGroupID(args[0])
			if err != nil {
				return err
			}
			rt, err := opts.open()
			if err != nil {
				return err
			}
			defer rt.close()

			g, err := rt.groups.ResolveGroup(cmd.Context(), id, opts.requestor())
			if err != nil {
				return err
			}
			return opts.printGroup(cmd.OutOrStdout(), toGroupOutput(g))
		},
	}
}

func newGroupsMoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <category>",
		Short: "Move a group to a new category using the current persistence toggle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGroupID(args[0])
			if err != nil {
				return err
			}
			rt, err := opts.open()
			if err != nil {
				return err
			}
			defer rt.close()

			g, strategy, err := rt.groups.MoveGroupCategory(cmd.Context(), id, args[1], opts.requestor())
			if err != nil {
				return err
			}
			out := toGroupOutput(g)
			out.Strategy = string(strategy)
			return opts.printGroup(cmd.OutOrStdout(), out)
		},
	}
}

func newGroupsSyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync <id>",
		Short: "Pull a group's description from the directory service into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGroupID(args[0])
			if err != nil {
				return err
			}
			rt, err := opts.open()
			if err != nil {
				return err
			}
			defer rt.close()

			g, err := rt.groups.SyncGroup(cmd.Context(), id, opts.requestor())
			if err != nil {
				return err
			}
			return opts.printGroup(cmd.OutOrStdout(), toGroupOutput(g))
		},
	}
}

func newGroupsImportCmd(opts *rootOptions) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "import <email>",
		Short: "Create a group record; the description is read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := readDescription(cmd.InOrStdin())
			if err != nil {
				return err
			}
			rt, err := opts.open()
			if err != nil {
				return err
			}
			defer rt.close()

			g, err := rt.groups.ImportGroup(cmd.Context(), args[0], name, desc, opts.requestor())
			if err != nil {
				return err
			}
			return opts.printGroup(cmd.OutOrStdout(), toGroupOutput(g))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	return cmd
}

func (o *rootOptions) printGroup(w io.Writer, g groupOutput) error {
	if o.jsonOut {
		return o.printJSON(w, g)
	}
	fmt.Fprintf(w, "id:       %d\n", g.ID)
	fmt.Fprintf(w, "email:    %s\n", g.Email)
	fmt.Fprintf(w, "category: %s\n", g.Category)
	if g.Strategy != "" {
		fmt.Fprintf(w, "strategy: %s\n", g.Strategy)
	}
	return nil
}

// readDescription 读取整段描述，只去掉结尾换行（末行配置后的换行会让配置失效）。
func readDescription(r io.Reader) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return "", fmt.Errorf("读取描述失败: %w", err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}
