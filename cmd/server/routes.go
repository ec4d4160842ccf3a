package main

import (
	"github.com/gin-gonic/gin"
	"github.com/jboilerplate/portal/internal/middleware"
	"github.com/jboilerplate/portal/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(middleware.RequestID(), logger.GinLogger(), logger.GinRecovery(), svc.metrics.GinMiddleware())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiters for unauthenticated write routes
	loginLimiter := middleware.NewRateLimiter(5, 10)
	setupLimiter := middleware.NewRateLimiter(2, 5)
	svc.limiters = append(svc.limiters, loginLimiter, setupLimiter)

	audit := middleware.AuditLog(svc.logs)

	r.GET("/health", svc.healthHandler.CheckHealth)
	r.GET("/metrics", gin.WrapH(svc.metrics.Handler()))

	// Route manifest, fetched by the dashboard on every boot
	r.GET("/config/generated-routes.json", svc.manifestHandler.Routes)

	// Uploaded logos and content images
	r.Static("/assets/logo", svc.cfg.LogoDir())
	r.Static("/uploads", svc.cfg.UploadDir())

	api := r.Group("/api")
	{
		// Setup wizard (public until completed)
		setup := api.Group("/setup")
		{
			setup.GET("/status", svc.setupHandler.GetStatus)
			setup.POST("/complete", setupLimiter.Middleware(), audit, svc.setupHandler.Complete)
			setup.POST("/test-db", setupLimiter.Middleware(), svc.setupHandler.TestDB)
		}

		// Branding needed before sign-in
		api.GET("/system-config/load-db", svc.systemConfigHandler.LoadDB)
		api.GET("/system-config/load-file", svc.systemConfigHandler.LoadFile)
		api.GET("/logo-info", svc.logoHandler.Info)
		api.GET("/menu-structure", svc.menuHandler.Get)

		auth := api.Group("/auth")
		{
			auth.POST("/login", loginLimiter.Middleware(), svc.authHandler.Login)
		}

		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
		}

		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), audit)
		{
			// System Config
			admin.POST("/system-config/save-db", svc.systemConfigHandler.SaveDB)
			admin.POST("/system-config/save-file", svc.systemConfigHandler.SaveFile)

			// Uploads
			admin.POST("/upload", svc.logoHandler.Upload)
			admin.POST("/upload-image", svc.imageHandler.Upload)

			// Menus
			admin.POST("/menu-structure", svc.menuHandler.Save)

			// Pages
			admin.GET("/pages", svc.pageHandler.List)
			admin.POST("/pages", svc.pageHandler.Create)
			admin.DELETE("/pages/:id", svc.pageHandler.Delete)
			admin.POST("/pages/delete-manual", svc.pageHandler.DeleteManual)

			// System
			admin.GET("/system/status", svc.systemHandler.Status)
			admin.GET("/system/logs", svc.systemHandler.Logs)
		}
	}
}
