package main

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/portfolio/internal/config"
	"github.com/huangang/portfolio/internal/middleware"
	"github.com/huangang/portfolio/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine. The
// returned limiter must be stopped on shutdown.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) *middleware.RateLimiter {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins...))

	// Public pages are the only unauthenticated surface that does real work
	siteLimiter := middleware.NewRateLimiter(20, 40)

	r.GET("/health", svc.healthHandler.CheckHealth)
	r.GET("/metrics", svc.metricsHandler.Metrics)

	publicSite := r.Group("/site", siteLimiter.Middleware())
	{
		publicSite.GET("/:template", svc.siteHandler.RenderHTML)
	}

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.GET("/config", svc.authHandler.GetAuthConfig)
		}

		apiSite := api.Group("/site", siteLimiter.Middleware())
		{
			apiSite.GET("", svc.siteHandler.Templates)
			apiSite.GET("/:template", svc.siteHandler.RenderJSON)
		}

		// SSE (public route with internal token validation)
		api.GET("/events/store", svc.sseHandler.StreamStoreEvents)

		// Editors manage content
		editor := api.Group("")
		editor.Use(middleware.AuthRequired(), middleware.EditorRequired(), middleware.AuditLog())
		{
			editor.GET("/auth/me", svc.authHandler.GetCurrentUser)

			editor.GET("/dashboard/stats", svc.dashboardHandler.GetStats)

			editor.GET("/colleges", svc.collegeHandler.List)
			editor.GET("/colleges/:id", svc.collegeHandler.GetByID)
			editor.GET("/colleges/:id/theme", svc.themeHandler.Resolve)

			editor.GET("/announcements", svc.announcementHandler.List)
			editor.GET("/announcements/:id", svc.announcementHandler.Get)
			editor.POST("/announcements", svc.announcementHandler.Create)
			editor.PUT("/announcements/:id", svc.announcementHandler.Update)
			editor.DELETE("/announcements/:id", svc.announcementHandler.Delete)

			editor.GET("/modules", svc.moduleHandler.List)
			editor.GET("/themes", svc.themeHandler.List)
			editor.GET("/themes/custom", svc.themeHandler.GetCustom)
			editor.GET("/settings", svc.settingsHandler.Get)
			editor.GET("/college-info", svc.settingsHandler.GetCollegeInfo)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			admin.POST("/colleges", svc.collegeHandler.Create)
			admin.PUT("/colleges/:id", svc.collegeHandler.Update)
			admin.DELETE("/colleges/:id", svc.collegeHandler.Delete)
			admin.PUT("/colleges/:id/modules/:key", svc.collegeHandler.ToggleModule)

			admin.POST("/modules", svc.moduleHandler.Create)
			admin.DELETE("/modules/:key", svc.moduleHandler.Delete)

			admin.POST("/themes/apply", svc.themeHandler.Apply)
			admin.PUT("/themes/custom", svc.themeHandler.SaveCustom)

			admin.PUT("/settings", svc.settingsHandler.Update)
			admin.PUT("/college-info", svc.settingsHandler.UpdateCollegeInfo)

			admin.GET("/backup/export", svc.backupHandler.Export)
			admin.POST("/backup/import", svc.backupHandler.Import)
			admin.POST("/backup/clear", svc.backupHandler.Clear)
			admin.GET("/backup/info", svc.backupHandler.Info)
			admin.POST("/backup/snapshot", svc.backupHandler.Snapshot)
			admin.GET("/backup/snapshots", svc.backupHandler.ListSnapshots)

			admin.GET("/system-logs", svc.systemLogHandler.List)
			admin.GET("/system-logs/modules", svc.systemLogHandler.GetModules)
		}
	}

	return siteLimiter
}
