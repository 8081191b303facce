package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gaps/internal/store"
)

var toggleKeys = map[string]string{
	"persist_config_to_group": store.SettingPersistConfigToGroup,
	"populate_group_settings": store.SettingPopulateGroupSettings,
}

func newTogglesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggles",
		Short: "Read or change runtime toggles (take effect without restart)",
	}
	cmd.AddCommand(newTogglesGetCmd(opts), newTogglesSetCmd(opts))
	return cmd
}

func newTogglesGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print effective toggle values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := opts.open()
			if err != nil {
				return err
			}
			defer rt.close()

			s := rt.store.ToggleStateEffective(cmd.Context())
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return opts.printJSON(out, map[string]bool{
					"persist_config_to_group": s.PersistConfigToGroup,
					"populate_group_settings": s.PopulateGroupSettings,
				})
			}
			fmt.Fprintf(out, "persist_config_to_group=%t%s\n", s.PersistConfigToGroup, overriddenMark(s.PersistConfigToGroupOverridden))
			fmt.Fprintf(out, "populate_group_settings=%t%s\n", s.PopulateGroupSettings, overriddenMark(s.PopulateGroupSettingsOverridden))
			return nil
		},
	}
}

func overriddenMark(v bool) string {
	if v {
		return " (app_settings)"
	}
	return " (default)"
}

// newTogglesSetCmd 写入 app_settings 覆盖；value 为 default 时删除覆盖，回到配置默认值。
func newTogglesSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <toggle> <true|false|default>",
		Short: "Override a toggle in app_settings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, ok := toggleKeys[strings.TrimSpace(args[0])]
			if !ok {
				return fmt.Errorf("未知开关: %s", args[0])
			}
			raw := strings.ToLower(strings.TrimSpace(args[1]))
			var value bool
			if raw != "default" {
				v, err := strconv.ParseBool(raw)
				if err != nil {
					return fmt.Errorf("开关值不合法: %s", args[1])
				}
				value = v
			}

			rt, err := opts.open()
			if err != nil {
				return err
			}
			defer rt.close()

			if raw == "default" {
				return rt.store.DeleteAppSetting(cmd.Context(), key)
			}
			return rt.store.UpsertBoolAppSetting(cmd.Context(), key, value)
		},
	}
}
