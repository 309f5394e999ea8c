package delivery

import (
	"net/http"
	"strconv"

	"boardpulse-backend/internal/task/repository"
	wsusecase "boardpulse-backend/internal/workspace/usecase"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskRepo         repository.TaskRepository
	workspaceUsecase wsusecase.WorkspaceUsecase
}

func NewTaskHandler(taskRepo repository.TaskRepository, workspaceUsecase wsusecase.WorkspaceUsecase) *TaskHandler {
	return &TaskHandler{
		taskRepo:         taskRepo,
		workspaceUsecase: workspaceUsecase,
	}
}

// ListByWorkspace returns synced tasks for chart rendering, paginated.
func (h *TaskHandler) ListByWorkspace(c *gin.Context) {
	userID := c.GetString("userID")
	workspaceID := c.Param("id")

	if _, err := h.workspaceUsecase.Get(userID, workspaceID); err != nil {
		status := http.StatusNotFound
		if err == wsusecase.ErrNotOwner {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	limit := 50
	offset := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	tasks, total, err := h.taskRepo.FindByWorkspace(workspaceID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":  tasks,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}
