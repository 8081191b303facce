package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"gaps/internal/config"
	"gaps/internal/directory"
	"gaps/internal/groups"
	"gaps/internal/middleware"
	"gaps/internal/store"
)

const testCookieName = "gaps_session"

// fakeDirectoryServer 模拟目录服务：按邮箱保存描述，记录收到的请求方法。
type fakeDirectoryServer struct {
	mu           sync.Mutex
	descriptions map[string]string
	methods      []string
}

func (f *fakeDirectoryServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimPrefix(r.URL.Path, "/groups/")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.methods = append(f.methods, r.Method)
	switch r.Method {
	case http.MethodGet:
		desc, ok := f.descriptions[email]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"no such group"}`)
			return
		}
		body, _ := sjson.Set(`{}`, "description", desc)
		_, _ = io.WriteString(w, body)
	case http.MethodPatch:
		b, _ := io.ReadAll(r.Body)
		f.descriptions[email] = gjson.GetBytes(b, "description").String()
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeDirectoryServer) description(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.descriptions[email]
}

func (f *fakeDirectoryServer) methodLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.methods...)
}

type testEnv struct {
	store  *store.Store
	dir    *fakeDirectoryServer
	engine http.Handler
}

func newTestEnv(t *testing.T, defaults config.ToggleDefaultsConfig) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "gaps.db") + "?_busy_timeout=1000"
	db, err := store.OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.EnsureSQLiteSchema(db); err != nil {
		t.Fatalf("EnsureSQLiteSchema: %v", err)
	}
	st := store.New(db)
	st.SetDialect(store.DialectSQLite)
	st.SetToggleDefaults(defaults)

	fake := &fakeDirectoryServer{descriptions: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc := groups.NewService(groups.ServiceOptions{
		Store:     st,
		Directory: directory.NewClient(config.DirectoryConfig{BaseURL: srv.URL, TimeoutSeconds: 5}),
		Toggles:   st,
		Audit:     st,
		RequestID: middleware.GetRequestID,
	})

	engine := gin.New()
	engine.Use(gin.Recovery())
	sessionStore := cookie.NewStore([]byte("test-secret"))
	sessionStore.Options(sessions.Options{Path: "/", MaxAge: 3600, HttpOnly: true, SameSite: http.SameSiteStrictMode})
	engine.Use(sessions.Sessions(testCookieName, sessionStore))
	SetRouter(engine, Options{
		Store:  st,
		Groups: svc,
		Healthz: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	})

	return &testEnv{
		store:  st,
		dir:    fake,
		engine: middleware.Chain(engine, middleware.RequestID),
	}
}

func (e *testEnv) createGroup(t *testing.T, email string, description string, category string) int64 {
	t.Helper()
	id, err := e.store.CreateGroup(context.Background(), email, "", description, category)
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	return id
}

type apiResponse struct {
	Code int
	Body string
}

func (r apiResponse) success() bool { return gjson.Get(r.Body, "success").Bool() }

func (r apiResponse) get(path string) gjson.Result { return gjson.Get(r.Body, path) }

func (e *testEnv) do(t *testing.T, method string, path string, body any, headers map[string]string) apiResponse {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, "http://example.com"+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	e.engine.ServeHTTP(rr, req)
	return apiResponse{Code: rr.Code, Body: rr.Body.String()}
}

func asAdmin() map[string]string {
	return map[string]string{middleware.RequestorHeader: "admin@example.com"}
}
