package app

import (
	"book_platform_backend/internal/middleware"
	"book_platform_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	api.Use(middleware.SessionMiddleware(s.auth))
	{
		api.GET("/health", c.health.HealthCheck)
		api.POST("/register", c.auth.Register)
		api.POST("/login", c.auth.Login)

		// The track endpoint speaks its own wire format and reports
		// missing auth as a JSON error rather than a redirect hint.
		api.POST("/progress/track", c.progress.Track)

		authed := api.Group("")
		authed.Use(middleware.AuthRequired())
		{
			authed.POST("/logout", c.auth.Logout)
			authed.GET("/profile", c.auth.GetProfile)
			authed.PUT("/user/profile", c.user.UpdateProfile)
			authed.PUT("/user/password", c.user.ChangePassword)
			authed.GET("/progress/dashboard", c.progress.Dashboard)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired())
		{
			admin.GET("/dashboard",
				middleware.RequirePermission(s.rbac, util.ResourceAnalytics, util.ActionRead),
				c.admin.Dashboard)
			admin.POST("/users/:id/roles",
				middleware.RequirePermission(s.rbac, util.ResourceUser, util.ActionWrite),
				c.admin.AssignRole)
			admin.DELETE("/users/:id/roles/:role",
				middleware.RequirePermission(s.rbac, util.ResourceUser, util.ActionWrite),
				c.admin.RemoveRole)
		}
	}
}
