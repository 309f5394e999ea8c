package main

import (
	"log"

	api "boardpulse-backend/cmd/api"
	authdomain "boardpulse-backend/internal/auth/domain"
	authRepo "boardpulse-backend/internal/auth/repository"
	authUsecase "boardpulse-backend/internal/auth/usecase"
	syncdomain "boardpulse-backend/internal/sync/domain"
	syncRepo "boardpulse-backend/internal/sync/repository"
	syncUsecase "boardpulse-backend/internal/sync/usecase"
	taskdomain "boardpulse-backend/internal/task/domain"
	taskRepo "boardpulse-backend/internal/task/repository"
	wsdomain "boardpulse-backend/internal/workspace/domain"
	wsRepo "boardpulse-backend/internal/workspace/repository"
	wsUsecase "boardpulse-backend/internal/workspace/usecase"
	"boardpulse-backend/pkg/config"
	"boardpulse-backend/pkg/database"
	"boardpulse-backend/pkg/sse"
	"boardpulse-backend/pkg/tracker"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &authdomain.RefreshToken{}, &wsdomain.Workspace{}, &wsdomain.ApiCallLog{}, &taskdomain.Task{}, &syncdomain.SyncHistory{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	workspaceRepository := wsRepo.NewWorkspaceRepository(db)
	apiCallLogRepository := wsRepo.NewApiCallLogRepository(db)
	taskRepository := taskRepo.NewGormTaskRepository(db)
	syncHistoryRepository := syncRepo.NewSyncHistoryRepository(db)

	// Initialize SSE Manager
	sseManager := sse.NewManager()
	go sseManager.Run()

	// Each sync run gets its own tracker client so rate-limit quota state is
	// isolated per invocation.
	providerFactory := func(token, workspaceID string) (syncdomain.TrackerProvider, error) {
		return tracker.NewClient(cfg.TrackerBaseURL, token, workspaceID, apiCallLogRepository)
	}

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepository, cfg)
	workspaceUsecaseInstance := wsUsecase.NewWorkspaceUsecase(workspaceRepository, cfg)
	syncUsecaseInstance := syncUsecase.NewSyncUsecase(taskRepository, syncHistoryRepository, workspaceRepository, providerFactory, cfg)
	syncUsecaseInstance.SetEventService(sseManager)

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, workspaceUsecaseInstance, syncUsecaseInstance, taskRepository, apiCallLogRepository, sseManager, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
