package router

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const timeLayout = "2006-01-02 15:04"

func wrapHTTP(h http.Handler) gin.HandlerFunc {
	if h == nil {
		return func(c *gin.Context) {
			c.Status(http.StatusNotFound)
		}
	}

	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func wrapHTTPFunc(f http.HandlerFunc) gin.HandlerFunc {
	if f == nil {
		return wrapHTTP(nil)
	}
	return wrapHTTP(f)
}

// groupIDParam 读取 :group_id；非法时已写出响应，调用方直接 return。
func groupIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("group_id")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "group_id 不合法"})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func storeMissing(c *gin.Context, opts Options) bool {
	if opts.Store == nil || opts.Groups == nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "store 未初始化"})
		return true
	}
	return false
}
