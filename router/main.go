package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

func SetRouter(r *gin.Engine, opts Options) {
	setSystemRoutes(r, opts)

	api := r.Group("/api")
	api.Use(gzip.Gzip(gzip.DefaultCompression))
	setAdminAPIRoutes(api, opts)
}

func setAdminAPIRoutes(api *gin.RouterGroup, opts Options) {
	admin := api.Group("/admin")
	setAdminSessionAPIRoutes(admin, opts)

	authed := admin.Group("")
	authed.Use(requireRequestor())
	setAdminGroupAPIRoutes(authed, opts)
	setAdminSettingsAPIRoutes(authed, opts)
	setAdminConfigAPIRoutes(authed, opts)
}
