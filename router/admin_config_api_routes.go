package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gaps/internal/groupconfig"
	"gaps/internal/groups"
)

func setAdminConfigAPIRoutes(r gin.IRoutes, opts Options) {
	r.POST("/config/parse", adminParseConfigHandler())
}

// adminParseConfigHandler 诊断用：展示一段描述会被如何解析，不读写任何存储。
func adminParseConfigHandler() gin.HandlerFunc {
	type reqBody struct {
		Description string `json:"description"`
		Email       string `json:"email"`
	}
	return func(c *gin.Context) {
		var req reqBody
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "无效的参数"})
			return
		}
		r := groupconfig.Parse(req.Description)
		plain, stripped := r.Stripped()

		g := groups.Group{Email: req.Email, Description: req.Description}
		groups.UpdateConfig(&g, requestorFromContext(c))

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "", "data": gin.H{
			"shape":       r.Shape.String(),
			"stripped":    stripped,
			"plain_text":  plain,
			"candidate":   r.Candidate,
			"config":      r.Config.Map(),
			"config_raw":  r.Config.Raw(),
			"category":    g.Category,
			"description": g.Description,
		}})
	}
}
