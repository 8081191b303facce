package directory

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotConfigured = errors.New("目录服务未配置（directory.base_url 为空）")
	// ErrMissingDescription 表示 2xx 响应中没有 description 字段；不能当作空描述，否则推送会覆盖远端正文。
	ErrMissingDescription = errors.New("目录服务响应缺少 description 字段")
)

// APIError 表示目录服务返回了非 2xx 响应。
type APIError struct {
	Op          string
	StatusCode  int
	Message     string
	BodySnippet string
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message != "" {
		return fmt.Sprintf("directory %s failed: %d %s", e.Op, e.StatusCode, e.Message)
	}
	if e.BodySnippet != "" {
		return fmt.Sprintf("directory %s failed: %d %s", e.Op, e.StatusCode, e.BodySnippet)
	}
	return fmt.Sprintf("directory %s failed: %d", e.Op, e.StatusCode)
}

func (e *APIError) NotFound() bool {
	return e != nil && e.StatusCode == http.StatusNotFound
}

// StatusOf 取出错误链上的目录服务状态码；不是 APIError 时返回 0。
func StatusOf(err error) int {
	var e *APIError
	if errors.As(err, &e) && e != nil {
		return e.StatusCode
	}
	return 0
}
