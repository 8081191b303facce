package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"gaps/internal/config"
	"gaps/internal/groups"
	"gaps/internal/obs"
	"gaps/internal/server"
	"gaps/internal/store"
)

type rootOptions struct {
	configPath string
	verbose    bool
	jsonOut    bool
	actor      string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "gaps-admin",
		Short:         "Administer directory groups and their categories",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			env := "prod"
			if opts.verbose {
				env = "dev"
			}
			slog.SetDefault(obs.NewLoggerTo(cmd.ErrOrStderr(), env))
			return config.LoadDotEnv()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (defaults to $GAPS_CONFIG, then env only)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging on stderr")
	cmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Output JSON")
	cmd.PersistentFlags().StringVar(&opts.actor, "as", "", "Requestor email recorded in the audit trail")

	cmd.AddCommand(
		newGroupsCmd(opts),
		newConfigCmd(opts),
		newTogglesCmd(opts),
		newDirectoryCmd(opts),
		newVersionCmd(opts),
	)
	return cmd
}

func (o *rootOptions) requestor() groups.Requestor {
	return groups.Requestor{Email: o.actor}
}

type runtime struct {
	store  *store.Store
	groups *groups.Service
	close  func()
}

// open 加载配置并连接数据库；调用方负责 close。
func (o *rootOptions) open() (*runtime, error) {
	path := o.configPath
	if path == "" {
		path = lookupEnv("GAPS_CONFIG")
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	db, dialect, err := store.Open(cfg.Env, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	st, _, svc := server.NewServices(cfg, db, dialect)
	return &runtime{store: st, groups: svc, close: func() { _ = db.Close() }}, nil
}

func (o *rootOptions) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
