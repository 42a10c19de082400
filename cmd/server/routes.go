package main

import (
	"github.com/gin-gonic/gin"
	"github.com/mkessler/taskhub/internal/config"
	"github.com/mkessler/taskhub/internal/middleware"
	"github.com/mkessler/taskhub/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) {
	// Middleware
	r.Use(middleware.RequestID(), logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for the public auth endpoints
	authLimiter := middleware.NewRateLimiter(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "taskhub"})
	})

	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.GET("/auth/email-check", svc.authHandler.CheckEmail)
			protected.POST("/auth/logout", svc.authHandler.Logout)

			// Boards
			protected.GET("/boards", svc.boardHandler.List)
			protected.POST("/boards", svc.boardHandler.Create)
			protected.GET("/boards/:id", svc.boardHandler.GetByID)
			protected.PATCH("/boards/:id", svc.boardHandler.Patch)
			protected.DELETE("/boards/:id", svc.boardHandler.Delete)

			// Tasks
			protected.POST("/tasks", svc.taskHandler.Create)
			protected.GET("/tasks/assigned-to-me", svc.taskHandler.ListAssignedToMe)
			protected.GET("/tasks/reviewing", svc.taskHandler.ListReviewing)
			protected.GET("/tasks/:id", svc.taskHandler.GetByID)
			protected.PATCH("/tasks/:id", svc.taskHandler.Patch)
			protected.DELETE("/tasks/:id", svc.taskHandler.Delete)

			// Comments (nested under tasks)
			protected.GET("/tasks/:id/comments", svc.commentHandler.List)
			protected.POST("/tasks/:id/comments", svc.commentHandler.Create)
			protected.DELETE("/tasks/:id/comments/:commentId", svc.commentHandler.Delete)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			admin.GET("/users", svc.userHandler.List)
			admin.PUT("/users/:id", svc.userHandler.Update)
			admin.DELETE("/users/:id", svc.userHandler.Delete)

			admin.GET("/system-logs", svc.systemLogHandler.List)
		}
	}
}
