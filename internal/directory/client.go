// Package directory 是托管群组的外部目录服务的 HTTP 客户端，只负责读写群组描述。
package directory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"gaps/internal/config"
	"gaps/internal/obs"
)

const (
	opGetGroup   = "get_group"
	opPatchGroup = "patch_group"

	maxResponseBytes = 2 << 20
	maxSnippetBytes  = 512
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func cloneDefaultTransport() *http.Transport {
	if t, ok := http.DefaultTransport.(*http.Transport); ok && t != nil {
		return t.Clone()
	}
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

func NewClient(cfg config.DirectoryConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:   strings.TrimSpace(cfg.Token),
		http: &http.Client{
			Transport: cloneDefaultTransport(),
			Timeout:   timeout,
		},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// GroupDescription 读取目录服务上群组的当前描述原文（可能带末行配置）。
func (c *Client) GroupDescription(ctx context.Context, email string) (string, error) {
	body, err := c.do(ctx, opGetGroup, http.MethodGet, email, nil)
	obs.RecordDirectoryCall(opGetGroup, err)
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("目录服务响应不是合法 JSON")
	}
	desc := gjson.GetBytes(body, "description")
	if !desc.Exists() {
		return "", ErrMissingDescription
	}
	// 显式 null 视为空描述。
	if desc.Type != gjson.String && desc.Type != gjson.Null {
		return "", fmt.Errorf("目录服务响应 description 字段类型错误: %s", desc.Type)
	}
	return desc.String(), nil
}

// PushDescription 覆盖目录服务上群组的描述。
func (c *Client) PushDescription(ctx context.Context, email string, description string) error {
	payload, err := sjson.SetBytes([]byte(`{}`), "description", description)
	if err != nil {
		return fmt.Errorf("构造请求体失败: %w", err)
	}
	_, err = c.do(ctx, opPatchGroup, http.MethodPatch, email, payload)
	obs.RecordDirectoryCall(opPatchGroup, err)
	return err
}

func (c *Client) groupURL(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", errors.New("群组邮箱为空")
	}
	return c.baseURL + "/groups/" + url.PathEscape(email), nil
}

func (c *Client) do(ctx context.Context, op string, method string, email string, payload []byte) ([]byte, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	u, err := c.groupURL(email)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Op: op, StatusCode: resp.StatusCode}
		if gjson.ValidBytes(body) {
			apiErr.Message = strings.TrimSpace(gjson.GetBytes(body, "error.message").String())
			if apiErr.Message == "" {
				apiErr.Message = strings.TrimSpace(gjson.GetBytes(body, "message").String())
			}
		}
		if apiErr.Message == "" {
			apiErr.BodySnippet = snippet(body)
		}
		return nil, apiErr
	}
	return body, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxSnippetBytes {
		s = s[:maxSnippetBytes] + "..."
	}
	return s
}
