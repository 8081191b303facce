// gaps 是群组目录管理服务入口：维护群组分类，并按运行期开关决定分类写入主存储还是目录服务。
package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gaps/internal/config"
	"gaps/internal/obs"
	"gaps/internal/server"
	"gaps/internal/store"
	"gaps/internal/version"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Warn("加载 .env 失败", "err", err)
	}

	cfg, err := config.LoadFromFile(os.Getenv("GAPS_CONFIG"))
	if err != nil {
		slog.Error("加载配置失败", "err", err)
		os.Exit(1)
	}

	logger := obs.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	db, dialect, err := store.Open(cfg.Env, cfg.DB)
	if err != nil {
		slog.Error("连接数据库失败", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	app, err := server.NewApp(server.AppOptions{
		Config:  cfg,
		DB:      db,
		Dialect: dialect,
		Version: version.Info(),
	})
	if err != nil {
		slog.Error("初始化服务失败", "err", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: seconds(cfg.Server.ReadHeaderTimeoutSeconds),
		ReadTimeout:       seconds(cfg.Server.ReadTimeoutSeconds),
		WriteTimeout:      seconds(cfg.Server.WriteTimeoutSeconds),
		IdleTimeout:       seconds(cfg.Server.IdleTimeoutSeconds),
	}

	serverErr := make(chan error, 1)

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		slog.Error("HTTP 服务监听启动失败", "addr", cfg.Server.Addr, "err", err)
		os.Exit(1)
	}
	go func() {
		slog.Info("服务启动", "addr", ln.Addr().String(), "version", version.Info().Version, "db", dialect)
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-serverErr:
		slog.Error("HTTP 服务异常退出", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("优雅停机失败", "err", err)
		_ = httpServer.Close()
	}
	slog.Info("服务已退出")
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
