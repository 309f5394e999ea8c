package delivery

import (
	"net/http"
	"strconv"

	"boardpulse-backend/internal/workspace/dto"
	"boardpulse-backend/internal/workspace/repository"
	"boardpulse-backend/internal/workspace/usecase"

	"github.com/gin-gonic/gin"
)

type WorkspaceHandler struct {
	workspaceUsecase usecase.WorkspaceUsecase
	apiCallLogRepo   repository.ApiCallLogRepository
}

func NewWorkspaceHandler(workspaceUsecase usecase.WorkspaceUsecase, apiCallLogRepo repository.ApiCallLogRepository) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceUsecase: workspaceUsecase,
		apiCallLogRepo:   apiCallLogRepo,
	}
}

func (h *WorkspaceHandler) Connect(c *gin.Context) {
	var req dto.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	ws, err := h.workspaceUsecase.Connect(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, ws)
}

func (h *WorkspaceHandler) List(c *gin.Context) {
	userID := c.GetString("userID")
	workspaces, err := h.workspaceUsecase.List(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.WorkspacesResponse{Workspaces: workspaces})
}

func (h *WorkspaceHandler) Get(c *gin.Context) {
	userID := c.GetString("userID")
	ws, err := h.workspaceUsecase.Get(userID, c.Param("id"))
	if err != nil {
		status := http.StatusNotFound
		if err == usecase.ErrNotOwner {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ws)
}

func (h *WorkspaceHandler) Deactivate(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.workspaceUsecase.Deactivate(userID, c.Param("id")); err != nil {
		status := http.StatusNotFound
		if err == usecase.ErrNotOwner {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "workspace deactivated"})
}

// ApiCalls returns the outbound tracker call audit trail, newest first.
func (h *WorkspaceHandler) ApiCalls(c *gin.Context) {
	userID := c.GetString("userID")
	workspaceID := c.Param("id")

	if _, err := h.workspaceUsecase.Get(userID, workspaceID); err != nil {
		status := http.StatusNotFound
		if err == usecase.ErrNotOwner {
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

	logs, total, err := h.apiCallLogRepo.ListByWorkspace(workspaceID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"calls":  logs,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}
