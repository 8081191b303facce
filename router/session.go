package router

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"gaps/internal/groups"
	"gaps/internal/middleware"
)

const (
	sessionRequestorEmailKey  = "requestor_email"
	sessionRequestorUserIDKey = "requestor_user_id"

	ctxRequestorKey = "gaps_requestor"
)

func sessionOf(c *gin.Context) (sessions.Session, bool) {
	if c == nil {
		return nil, false
	}
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return nil, false
	}
	return sessions.Default(c), true
}

func sessionString(c *gin.Context, key string) string {
	sess, ok := sessionOf(c)
	if !ok {
		return ""
	}
	s, _ := sess.Get(key).(string)
	return strings.TrimSpace(s)
}

func sessionInt64(c *gin.Context, key string) (int64, bool) {
	sess, ok := sessionOf(c)
	if !ok {
		return 0, false
	}
	switch x := sess.Get(key).(type) {
	case int64:
		return x, x > 0
	case int:
		return int64(x), x > 0
	case float64:
		return int64(x), x > 0
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// requestorFromRequest 优先使用会话中的操作人，其次是 Gaps-User 请求头。
func requestorFromRequest(c *gin.Context) (groups.Requestor, bool) {
	email := sessionString(c, sessionRequestorEmailKey)
	userID, _ := sessionInt64(c, sessionRequestorUserIDKey)
	if email == "" {
		email = strings.TrimSpace(c.GetHeader(middleware.RequestorHeader))
		userID = 0
	}
	if email == "" || !strings.Contains(email, "@") {
		return groups.Requestor{}, false
	}
	return groups.Requestor{UserID: userID, Email: strings.ToLower(email)}, true
}

func requireRequestor() gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := requestorFromRequest(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "未登录：需要会话或 " + middleware.RequestorHeader + " 请求头"})
			c.Abort()
			return
		}
		c.Set(ctxRequestorKey, r)
		c.Next()
	}
}

func requestorFromContext(c *gin.Context) groups.Requestor {
	v, ok := c.Get(ctxRequestorKey)
	if !ok {
		return groups.Requestor{}
	}
	r, _ := v.(groups.Requestor)
	return r
}

func setAdminSessionAPIRoutes(r gin.IRoutes, opts Options) {
	r.GET("/session", adminGetSessionHandler())
	r.POST("/session", adminCreateSessionHandler())
	r.DELETE("/session", adminDeleteSessionHandler())
}

func adminGetSessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := requestorFromRequest(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "未登录"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "", "data": gin.H{
			"email":   r.Email,
			"user_id": r.UserID,
		}})
	}
}

func adminCreateSessionHandler() gin.HandlerFunc {
	type reqBody struct {
		Email  string `json:"email"`
		UserID int64  `json:"user_id"`
	}
	return func(c *gin.Context) {
		sess, ok := sessionOf(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "会话未启用"})
			return
		}
		var req reqBody
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "无效的参数"})
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || !strings.Contains(email, "@") {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "email 不合法"})
			return
		}
		sess.Set(sessionRequestorEmailKey, email)
		if req.UserID > 0 {
			sess.Set(sessionRequestorUserIDKey, req.UserID)
		} else {
			sess.Delete(sessionRequestorUserIDKey)
		}
		if err := sess.Save(); err != nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "保存会话失败"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "已登录"})
	}
}

func adminDeleteSessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := sessionOf(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"success": true, "message": ""})
			return
		}
		sess.Clear()
		sess.Options(sessions.Options{Path: "/", MaxAge: -1})
		_ = sess.Save()
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "已退出"})
	}
}
