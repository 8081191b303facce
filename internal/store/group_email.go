package store

import (
	"errors"
	"fmt"
	"strings"
)

func normalizeGroupEmail(raw string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(raw))
	if e == "" {
		return "", errors.New("group_email 不能为空")
	}
	if len(e) > 255 {
		return "", fmt.Errorf("group_email 过长（最多 255 字符）")
	}
	local, domain, ok := strings.Cut(e, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return "", fmt.Errorf("group_email 不合法: %q", raw)
	}
	for _, r := range e {
		if r <= ' ' || r == 0x7f {
			return "", fmt.Errorf("group_email 不能包含空白或控制字符")
		}
	}
	return e, nil
}
