package api

import (
	"net/http"

	"boardpulse-backend/internal/auth/delivery"
	authUsecase "boardpulse-backend/internal/auth/usecase"
	syncDelivery "boardpulse-backend/internal/sync/delivery"
	taskDelivery "boardpulse-backend/internal/task/delivery"
	wsDelivery "boardpulse-backend/internal/workspace/delivery"
	"boardpulse-backend/pkg/sse"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUc authUsecase.AuthUsecase, authHandler *delivery.AuthHandler, workspaceHandler *wsDelivery.WorkspaceHandler, syncHandler *syncDelivery.SyncHandler, taskHandler *taskDelivery.TaskHandler, sseManager *sse.Manager) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// SSE endpoint
		api.GET("/events", delivery.AuthMiddleware(authUc), func(c *gin.Context) {
			userID := c.GetString("userID")
			sseManager.ServeHTTP(c, userID)
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", delivery.AuthMiddleware(authUc), authHandler.Me)
		}

		// Workspace routes (protected)
		workspaces := api.Group("/workspaces")
		workspaces.Use(delivery.AuthMiddleware(authUc))
		{
			workspaces.POST("", workspaceHandler.Connect)
			workspaces.GET("", workspaceHandler.List)
			workspaces.GET("/:id", workspaceHandler.Get)
			workspaces.DELETE("/:id", workspaceHandler.Deactivate)
			workspaces.GET("/:id/api-calls", workspaceHandler.ApiCalls)

			workspaces.GET("/:id/tasks", taskHandler.ListByWorkspace)

			workspaces.POST("/:id/sync", syncHandler.Sync)
			workspaces.GET("/:id/sync/stream", syncHandler.SyncStream)
			workspaces.POST("/:id/import", syncHandler.Import)
			workspaces.GET("/:id/sync-history", syncHandler.History)
		}
	}
}
