package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gaps/internal/store"
)

type adminTogglesView struct {
	PersistConfigToGroup  bool `json:"persist_config_to_group"`
	PopulateGroupSettings bool `json:"populate_group_settings"`

	PersistConfigToGroupOverride  bool `json:"persist_config_to_group_override"`
	PopulateGroupSettingsOverride bool `json:"populate_group_settings_override"`
}

func toAdminTogglesView(s store.ToggleState) adminTogglesView {
	return adminTogglesView{
		PersistConfigToGroup:          s.PersistConfigToGroup,
		PopulateGroupSettings:         s.PopulateGroupSettings,
		PersistConfigToGroupOverride:  s.PersistConfigToGroupOverridden,
		PopulateGroupSettingsOverride: s.PopulateGroupSettingsOverridden,
	}
}

func setAdminSettingsAPIRoutes(r gin.IRoutes, opts Options) {
	r.GET("/settings/toggles", adminGetTogglesHandler(opts))
	r.PUT("/settings/toggles", adminUpdateTogglesHandler(opts))
}

func adminGetTogglesHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		if opts.Store == nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "store 未初始化"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "", "data": toAdminTogglesView(opts.Store.ToggleStateEffective(c.Request.Context()))})
	}
}

// adminUpdateTogglesHandler 只改动请求里出现的开关；reset=true 时先清除全部覆盖，回到配置默认值。
func adminUpdateTogglesHandler(opts Options) gin.HandlerFunc {
	type reqBody struct {
		PersistConfigToGroup  *bool `json:"persist_config_to_group"`
		PopulateGroupSettings *bool `json:"populate_group_settings"`
		Reset                 bool  `json:"reset"`
	}
	return func(c *gin.Context) {
		if opts.Store == nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "store 未初始化"})
			return
		}
		var req reqBody
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "无效的参数"})
			return
		}
		ctx := c.Request.Context()
		if req.Reset {
			for _, key := range []string{store.SettingPersistConfigToGroup, store.SettingPopulateGroupSettings} {
				if err := opts.Store.DeleteAppSetting(ctx, key); err != nil {
					c.JSON(http.StatusOK, gin.H{"success": false, "message": "保存失败"})
					return
				}
			}
		}
		if req.PersistConfigToGroup != nil {
			if err := opts.Store.UpsertBoolAppSetting(ctx, store.SettingPersistConfigToGroup, *req.PersistConfigToGroup); err != nil {
				c.JSON(http.StatusOK, gin.H{"success": false, "message": "保存失败"})
				return
			}
		}
		if req.PopulateGroupSettings != nil {
			if err := opts.Store.UpsertBoolAppSetting(ctx, store.SettingPopulateGroupSettings, *req.PopulateGroupSettings); err != nil {
				c.JSON(http.StatusOK, gin.H{"success": false, "message": "保存失败"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "已保存", "data": toAdminTogglesView(opts.Store.ToggleStateEffective(ctx))})
	}
}
