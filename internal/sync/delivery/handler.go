package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	syncdto "boardpulse-backend/internal/sync/dto"
	"boardpulse-backend/internal/sync/usecase"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	syncUsecase usecase.SyncUsecase
}

func NewSyncHandler(syncUsecase usecase.SyncUsecase) *SyncHandler {
	return &SyncHandler{syncUsecase: syncUsecase}
}

func statusForError(err error) int {
	switch err {
	case usecase.ErrInvalidScope:
		return http.StatusBadRequest
	case usecase.ErrWorkspaceNotFound:
		return http.StatusNotFound
	case usecase.ErrNotOwner:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Sync runs a blocking API sync and returns the final counts.
func (h *SyncHandler) Sync(c *gin.Context) {
	var req syncdto.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	summary, err := h.syncUsecase.SyncWorkspace(c.Request.Context(), userID, c.Param("id"), &req, nil)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// SyncStream runs the same sync but reports progress over a server-sent
// event stream that stays open until the terminal event. The sync is bound
// to the request context, so a disconnecting client cancels it, unless
// detach=true, which lets the run finish regardless.
func (h *SyncHandler) SyncStream(c *gin.Context) {
	var req syncdto.SyncRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := c.Request.Context()
	if c.Query("detach") == "true" {
		ctx = context.Background()
	}

	userID := c.GetString("userID")
	workspaceID := c.Param("id")

	events := make(chan syncdto.ProgressEvent, 64)
	go func() {
		defer close(events)

		terminal := false
		emit := func(evt syncdto.ProgressEvent) {
			if evt.Progress >= 100 {
				terminal = true
			}
			// Fire-and-forget: never block the sync on a slow consumer.
			select {
			case events <- evt:
			default:
			}
		}

		_, err := h.syncUsecase.SyncWorkspace(ctx, userID, workspaceID, &req, emit)
		if err != nil && !terminal {
			// Errors raised before the run produced its own terminal event
			// (bad scope, unknown workspace) still need one.
			emit(syncdto.ProgressEvent{Status: "error", Message: "sync failed", Progress: 100, Error: err.Error()})
		}
	}()

	for evt := range events {
		data, err := json.Marshal(evt)
		if err != nil {
			continue
		}
		fmt.Fprintf(c.Writer, "event: progress\ndata: %s\n\n", data)
		flusher.Flush()
	}
}

// Import ingests an uploaded spreadsheet through the same upsert path.
func (h *SyncHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	userID := c.GetString("userID")
	summary, err := h.syncUsecase.ImportSpreadsheet(userID, c.Param("id"), file)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// History returns sync runs for a workspace, newest first.
func (h *SyncHandler) History(c *gin.Context) {
	limit := 20
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

	userID := c.GetString("userID")
	history, total, err := h.syncUsecase.GetSyncHistory(userID, c.Param("id"), limit, offset)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, syncdto.SyncHistoryResponse{
		History: history,
		Limit:   limit,
		Offset:  offset,
		Total:   total,
	})
}
