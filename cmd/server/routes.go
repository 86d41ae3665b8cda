package main

import (
	"github.com/gin-gonic/gin"
	"github.com/teamboardhq/teamboard/backend/internal/handlers"
	"github.com/teamboardhq/teamboard/backend/internal/middleware"
	"github.com/teamboardhq/teamboard/backend/internal/models"
	"github.com/teamboardhq/teamboard/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for credential endpoints
	authLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Projects
			projectHandler := handlers.NewProjectHandler(models.GetDB())
			protected.GET("/projects", projectHandler.List)
			protected.GET("/projects/:id", projectHandler.GetByID)
			protected.POST("/projects", projectHandler.Create)
			protected.PUT("/projects/:id", projectHandler.Update)
			protected.DELETE("/projects/:id", projectHandler.Delete)

			// Project members
			memberHandler := handlers.NewMemberHandler(models.GetDB())
			protected.GET("/projects/:id/members", memberHandler.List)
			protected.DELETE("/projects/:id/members/:userId", memberHandler.Remove)

			// Invitations
			invitationHandler := handlers.NewInvitationHandler(models.GetDB())
			protected.POST("/projects/:id/invitations", invitationHandler.Invite)
			protected.GET("/projects/:id/invitations", invitationHandler.ListForProject)
			protected.GET("/invitations", invitationHandler.ListMine)
			protected.GET("/invitations/:id", invitationHandler.GetByID)
			protected.POST("/invitations/:id/accept", invitationHandler.Accept)
			protected.POST("/invitations/:id/reject", invitationHandler.Reject)

			// Tasks
			taskHandler := handlers.NewTaskHandler(models.GetDB())
			protected.POST("/projects/:id/tasks", taskHandler.Create)
			protected.GET("/projects/:id/tasks", taskHandler.ListByProject)
			protected.GET("/tasks", taskHandler.ListMine)
			protected.GET("/tasks/:id", taskHandler.GetByID)
			protected.PUT("/tasks/:id", taskHandler.Update)
			protected.DELETE("/tasks/:id", taskHandler.Delete)

			// Comments
			commentHandler := handlers.NewCommentHandler(models.GetDB())
			protected.POST("/tasks/:id/comments", commentHandler.Add)
			protected.GET("/tasks/:id/comments", commentHandler.ListByTask)
			protected.PUT("/comments/:id", commentHandler.Update)
			protected.DELETE("/comments/:id", commentHandler.Delete)

			// User directory (for picking invitees and assignees)
			userHandler := handlers.NewUserHandler(models.GetDB())
			protected.GET("/users", userHandler.List)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			// Users
			userHandler := handlers.NewUserHandler(models.GetDB())
			admin.PUT("/users/:id", userHandler.Update)
			admin.DELETE("/users/:id", userHandler.Delete)

			// System Logs
			systemLogHandler := handlers.NewSystemLogHandler(models.GetDB())
			admin.GET("/system-logs", systemLogHandler.List)

			// System Config
			systemConfigHandler := handlers.NewSystemConfigHandler(models.GetDB())
			admin.GET("/system-config/email", systemConfigHandler.GetEmailConfig)
			admin.PUT("/system-config/email", systemConfigHandler.UpdateEmailConfig)
		}
	}
}
