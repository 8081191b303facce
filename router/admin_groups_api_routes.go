package router

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gaps/internal/groups"
	"gaps/internal/store"
)

type adminGroupView struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type adminResolvedGroupView struct {
	ID          int64             `json:"id"`
	Email       string            `json:"email"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Config      map[string]string `json:"config"`
	ConfigRaw   string            `json:"config_raw,omitempty"`
}

type adminAuditEventView struct {
	EventID   string `json:"event_id"`
	Time      string `json:"time"`
	RequestID string `json:"request_id,omitempty"`
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	Strategy  string `json:"strategy,omitempty"`
	Before    string `json:"before,omitempty"`
	After     string `json:"after,omitempty"`
	Error     string `json:"error,omitempty"`
}

func toAdminGroupView(g store.Group) adminGroupView {
	return adminGroupView{
		ID:          g.ID,
		Email:       g.Email,
		Name:        g.Name,
		Description: g.Description,
		Category:    g.Category,
		CreatedAt:   g.CreatedAt.Format(timeLayout),
		UpdatedAt:   g.UpdatedAt.Format(timeLayout),
	}
}

func toAdminResolvedGroupView(g groups.Group) adminResolvedGroupView {
	return adminResolvedGroupView{
		ID:          g.ID,
		Email:       g.Email,
		Name:        g.Name,
		Description: g.Description,
		Category:    g.Category,
		Config:      g.Config.Map(),
		ConfigRaw:   g.Config.Raw(),
	}
}

func setAdminGroupAPIRoutes(r gin.IRoutes, opts Options) {
	r.GET("/groups", adminListGroupsHandler(opts))
	r.POST("/groups", adminImportGroupHandler(opts))
	r.GET("/groups/:group_id", adminGetGroupHandler(opts))
	r.GET("/groups/:group_id/resolve", adminResolveGroupHandler(opts))
	r.PUT("/groups/:group_id/category", adminMoveGroupCategoryHandler(opts))
	r.POST("/groups/:group_id/sync", adminSyncGroupHandler(opts))
	r.GET("/groups/:group_id/audit", adminListGroupAuditHandler(opts))

	r.GET("/categories", adminListCategoriesHandler(opts))
}

func adminListGroupsHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		if storeMissing(c, opts) {
			return
		}
		rows, err := opts.Store.ListGroups(c.Request.Context(), c.Query("category"))
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "查询失败"})
			return
		}
		out := make([]adminGroupView, 0, len(rows))
		for _, row := range rows {
			out = append(out, toAdminGroupView(row))
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "", "data": out})
	}
}

func adminImportGroupHandler(opts Options) gin.HandlerFunc {
	type reqBody struct {
		Email       string `json:"email"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	return func(c *gin.Context) {
		if storeMissing(c, opts) {
			return
		}
		var req reqBody
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "无效的参数"})
			return
		}
		if strings.TrimSpace(req.Email) == "" {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "email 不能为空"})
			return
		}
		g, err := opts.Groups.ImportGroup(c.Request.Context(), req.Email, req.Name, req.Description, requestorFromContext(c))
		if err != nil {
			if errors.Is(err, store.ErrGroupEmailTaken) {
				c.JSON(http.StatusOK, gin.H{"success": false, "message": "群组邮箱已存在"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "已导入", "data": toAdminResolvedGroupView(g)})
	}
}

func adminGetGroupHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		if storeMissing(c, opts) {
			return
		}
		id, ok := groupIDParam(c)
		if !ok {
			return
		}
		row, err := opts.Store.GetGroupByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not Found"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "查询失败"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "", "data": toAdminGroupView(row)})
	}
}

func adminResolveGroupHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		if storeMissing(c, opts) {
			return
		}
		id, ok := groupIDParam(c)
		if !ok {
			return
		}
		g, err := opts.Groups.ResolveGroup(c.Request.Context(), id, requestorFromContext(c))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not Found"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "查询失败"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "", "data": toAdminResolvedGroupView(g)})
	}
}

func adminMoveGroupCategoryHandler(opts Options) gin.HandlerFunc {
	type reqBody struct {
		Category string `json:"category"`
	}
	return func(c *gin.Context) {
		if storeMissing(c, opts) {
			return
		}
		id, ok := groupIDParam(c)
		if !ok {
			return
		}
		var req reqBody
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "无效的参数"})
			return
		}
		g, strategy, err := opts.Groups.MoveGroupCategory(c.Request.Context(), id, req.Category, requestorFromContext(c))
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not Found"})
			case errors.Is(err, groups.ErrEmptyCategory), errors.Is(err, groups.ErrCategoryTooLong):
				c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
			default:
				c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error(), "data": gin.H{"strategy": strategy}})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "已保存", "data": gin.H{
			"strategy": strategy,
			"group":    toAdminResolvedGroupView(g),
		}})
	}
}

func adminSyncGroupHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		if storeMissing(c, opts) {
			return
		}
		id, ok := groupIDParam(c)
		if !ok {
			return
		}
		g, err := opts.Groups.SyncGroup(c.Request.Context(), id, requestorFromContext(c))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not Found"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "已同步", "data": toAdminResolvedGroupView(g)})
	}
}

func adminListGroupAuditHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		if storeMissing(c, opts) {
			return
		}
		id, ok := groupIDParam(c)
		if !ok {
			return
		}
		rows, err := opts.Store.ListGroupAuditEvents(c.Request.Context(), id, queryInt(c, "limit", 100))
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "查询失败"})
			return
		}
		out := make([]adminAuditEventView, 0, len(rows))
		for _, ev := range rows {
			out = append(out, adminAuditEventView{
				EventID:   ev.EventID,
				Time:      ev.Time.Format(timeLayout),
				RequestID: ev.RequestID,
				Actor:     ev.Actor,
				Action:    ev.Action,
				Strategy:  ev.Strategy,
				Before:    ev.Before,
				After:     ev.After,
				Error:     ev.Error,
			})
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "", "data": out})
	}
}

func adminListCategoriesHandler(opts Options) gin.HandlerFunc {
	type categoryView struct {
		Category string `json:"category"`
		Groups   int64  `json:"groups"`
	}
	return func(c *gin.Context) {
		if storeMissing(c, opts) {
			return
		}
		rows, err := opts.Store.ListCategories(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "查询失败"})
			return
		}
		out := make([]categoryView, 0, len(rows))
		for _, row := range rows {
			out = append(out, categoryView{Category: row.Category, Groups: row.Groups})
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "", "data": out})
	}
}
