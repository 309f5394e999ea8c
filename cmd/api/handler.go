package api

import (
	authDelivery "boardpulse-backend/internal/auth/delivery"
	authUsecase "boardpulse-backend/internal/auth/usecase"
	syncDelivery "boardpulse-backend/internal/sync/delivery"
	syncUsecase "boardpulse-backend/internal/sync/usecase"
	taskDelivery "boardpulse-backend/internal/task/delivery"
	taskRepo "boardpulse-backend/internal/task/repository"
	wsDelivery "boardpulse-backend/internal/workspace/delivery"
	wsRepo "boardpulse-backend/internal/workspace/repository"
	wsUsecase "boardpulse-backend/internal/workspace/usecase"
	"boardpulse-backend/pkg/config"
	"boardpulse-backend/pkg/sse"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	engine *gin.Engine
}

func NewHandler(authUc authUsecase.AuthUsecase, workspaceUc wsUsecase.WorkspaceUsecase, syncUc syncUsecase.SyncUsecase, taskRepository taskRepo.TaskRepository, apiCallLogRepository wsRepo.ApiCallLogRepository, sseManager *sse.Manager, cfg *config.Config) *Handler {
	engine := gin.Default()

	// Permissive CORS; the dashboard frontend is served from another origin.
	engine.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	authHandler := authDelivery.NewAuthHandler(authUc)
	workspaceHandler := wsDelivery.NewWorkspaceHandler(workspaceUc, apiCallLogRepository)
	syncHandler := syncDelivery.NewSyncHandler(syncUc)
	taskHandler := taskDelivery.NewTaskHandler(taskRepository, workspaceUc)

	SetupRoutes(engine, authUc, authHandler, workspaceHandler, syncHandler, taskHandler, sseManager)

	return &Handler{engine: engine}
}

func (h *Handler) Start(addr string) error {
	return h.engine.Run(addr)
}
