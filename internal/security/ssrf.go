// Package security 校验外部服务的 base_url：只允许 http/https、必须有 host，且不得携带凭据、查询串或片段。
package security

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// Resolver 抽象 DNS 解析，便于测试替换。
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// ValidateBaseURL 做静态校验；resolver 非空时额外确认 host 可解析（IP 字面量不解析）。
func ValidateBaseURL(ctx context.Context, raw string, resolver Resolver) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("解析 base_url 失败: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("base_url 仅支持 http/https")
	}
	if u.User != nil {
		return nil, errors.New("base_url 不能包含用户名或密码，请改用 token 配置")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, errors.New("base_url 不能包含查询参数或片段")
	}
	host := u.Hostname()
	if host == "" {
		return nil, errors.New("base_url host 不能为空")
	}
	if resolver == nil || net.ParseIP(host) != nil {
		return u, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	addrs, err := resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("解析 base_url DNS 失败: %w", err)
	}
	if len(addrs) == 0 {
		return nil, errors.New("base_url 无可用 DNS 解析结果")
	}
	return u, nil
}
