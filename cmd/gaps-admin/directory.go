package main

import (
	"errors"
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"gaps/internal/config"
	"gaps/internal/security"
)

func newDirectoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "directory",
		Short: "Inspect the directory service connection",
	}
	cmd.AddCommand(newDirectoryCheckCmd(opts))
	return cmd
}

func newDirectoryCheckCmd(opts *rootOptions) *cobra.Command {
	var skipDNS bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configured directory base URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := opts.configPath
			if path == "" {
				path = lookupEnv("GAPS_CONFIG")
			}
			cfg, err := config.LoadFromFile(path)
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}
			if cfg.Directory.BaseURL == "" {
				return errors.New("未配置目录服务 base_url")
			}

			var resolver security.Resolver = net.DefaultResolver
			if skipDNS {
				resolver = nil
			}
			u, err := security.ValidateBaseURL(cmd.Context(), cfg.Directory.BaseURL, resolver)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return opts.printJSON(out, map[string]any{
					"base_url":  u.String(),
					"host":      u.Hostname(),
					"token_set": cfg.Directory.Token != "",
				})
			}
			fmt.Fprintf(out, "base_url: %s\n", u.String())
			fmt.Fprintf(out, "token:    %t\n", cfg.Directory.Token != "")
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipDNS, "skip-dns", false, "Only check the URL syntax")
	return cmd
}
