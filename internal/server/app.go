// Package server 组装存储、目录服务客户端、群组服务与 HTTP 路由，使 main 保持简单可读。
package server

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"gaps/internal/config"
	"gaps/internal/directory"
	"gaps/internal/groups"
	"gaps/internal/middleware"
	"gaps/internal/security"
	"gaps/internal/store"
	"gaps/internal/version"
	"gaps/router"
)

type AppOptions struct {
	Config  config.Config
	DB      *sql.DB
	Dialect store.Dialect
	Version version.BuildInfo
}

type App struct {
	cfg       config.Config
	db        *sql.DB
	store     *store.Store
	directory *directory.Client
	groups    *groups.Service
	version   version.BuildInfo
	handler   http.Handler
}

// NewServices 按配置构造存储与群组服务；HTTP 服务与 CLI 共用同一套装配。
func NewServices(cfg config.Config, db *sql.DB, dialect store.Dialect) (*store.Store, *directory.Client, *groups.Service) {
	st := store.New(db)
	st.SetDialect(dialect)
	st.SetToggleDefaults(cfg.ToggleDefaults)

	dir := directory.NewClient(cfg.Directory)
	opts := groups.ServiceOptions{
		Store:     st,
		Toggles:   st,
		Audit:     st,
		RequestID: middleware.GetRequestID,
	}
	if dir.Enabled() {
		if _, err := security.ValidateBaseURL(context.Background(), cfg.Directory.BaseURL, nil); err != nil {
			slog.Error("目录服务 base_url 不合法，已禁用目录服务", "err", err)
			dir = directory.NewClient(config.DirectoryConfig{})
		} else {
			opts.Directory = dir
		}
	} else {
		slog.Warn("未配置目录服务，persist_config_to_group 与同步功能不可用")
	}
	return st, dir, groups.NewService(opts)
}

func NewApp(opts AppOptions) (*App, error) {
	st, dir, svc := NewServices(opts.Config, opts.DB, opts.Dialect)

	app := &App{
		cfg:       opts.Config,
		db:        opts.DB,
		store:     st,
		directory: dir,
		groups:    svc,
		version:   opts.Version,
	}

	sessionSecret := strings.TrimSpace(opts.Config.Security.SessionSecret)
	if sessionSecret == "" {
		sessionSecret = randomSecret(32)
	}

	if opts.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	sessionStore := cookie.NewStore([]byte(sessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   opts.Config.Env != "dev" && !opts.Config.Security.DisableSecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	engine.Use(sessions.Sessions(SessionCookieName, sessionStore))

	router.SetRouter(engine, router.Options{
		Store:   st,
		Groups:  svc,
		Healthz: app.handleHealthz,
	})

	app.handler = middleware.Chain(engine, middleware.RequestID, middleware.AccessLog)
	return app, nil
}

func randomSecret(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func (a *App) Handler() http.Handler {
	return a.handler
}

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	type resp struct {
		OK      bool   `json:"ok"`
		Env     string `json:"env"`
		Version string `json:"version"`
		Date    string `json:"date"`

		DBOK             bool `json:"db_ok"`
		DirectoryEnabled bool `json:"directory_enabled"`

		PersistConfigToGroup  bool `json:"persist_config_to_group"`
		PopulateGroupSettings bool `json:"populate_group_settings"`
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	dbOK := a.db != nil && a.db.PingContext(ctx) == nil
	t := a.store.ToggleStateEffective(ctx)

	out := resp{
		OK:                    true,
		Env:                   a.cfg.Env,
		Version:               a.version.Version,
		Date:                  a.version.Date,
		DBOK:                  dbOK,
		DirectoryEnabled:      a.directory.Enabled(),
		PersistConfigToGroup:  t.PersistConfigToGroup,
		PopulateGroupSettings: t.PopulateGroupSettings,
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(out)
}
