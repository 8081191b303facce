package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestAccessLog_DoesNotLogAuthorizationOrQuery(t *testing.T) {
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	t.Cleanup(func() { slog.SetDefault(old) })

	secret := "directory_secret_should_not_appear"
	req := httptest.NewRequest(http.MethodPut, "http://example.com/api/admin/groups/1/category?token="+secret, nil)
	req.Header.Set("Authorization", "Bearer "+secret)
	req.Header.Set(RequestorHeader, "admin@example.com")

	rr := httptest.NewRecorder()
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}), RequestID, AccessLog)
	h.ServeHTTP(rr, req)

	out := buf.String()
	if strings.Contains(out, secret) {
		t.Fatalf("log contains secret: %s", out)
	}
	line := strings.TrimSpace(out)
	if got := gjson.Get(line, "status").Int(); got != http.StatusAccepted {
		t.Fatalf("status = %d, log=%s", got, line)
	}
	if got := gjson.Get(line, "requestor").String(); got != "admin@example.com" {
		t.Fatalf("requestor = %q", got)
	}
	if got := gjson.Get(line, "request_id").String(); got == "" || got != rr.Header().Get(RequestIDHeader) {
		t.Fatalf("request_id = %q", got)
	}
}
