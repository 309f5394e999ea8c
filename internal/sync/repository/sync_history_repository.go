package repository

import (
	"encoding/json"
	"time"

	"boardpulse-backend/internal/sync/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SyncHistoryRepository interface {
	Create(workspaceID, syncType string) (*domain.SyncHistory, error)
	Finish(id, status string, total, created, updated int, errs []string) error
	FindByWorkspace(workspaceID string, limit, offset int) ([]*domain.SyncHistory, int64, error)
}

type syncHistoryRepository struct {
	db *gorm.DB
}

func NewSyncHistoryRepository(db *gorm.DB) SyncHistoryRepository {
	return &syncHistoryRepository{db: db}
}

func (r *syncHistoryRepository) Create(workspaceID, syncType string) (*domain.SyncHistory, error) {
	now := time.Now()
	hist := &domain.SyncHistory{
		ID:          uuid.New().String(),
		WorkspaceID: workspaceID,
		SyncType:    syncType,
		Status:      domain.SyncStatusInProgress,
		StartedAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.db.Create(hist).Error; err != nil {
		return nil, err
	}
	return hist, nil
}

// Finish performs the single terminal write for a sync run.
func (r *syncHistoryRepository) Finish(id, status string, total, created, updated int, errs []string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":        status,
		"total_tasks":   total,
		"created_count": created,
		"updated_count": updated,
		"error_count":   len(errs),
		"completed_at":  now,
		"updated_at":    now,
	}
	if len(errs) > 0 {
		payload, err := json.Marshal(errs)
		if err != nil {
			return err
		}
		updates["errors"] = datatypes.JSON(payload)
	}
	return r.db.Model(&domain.SyncHistory{}).Where("id = ?", id).Updates(updates).Error
}

func (r *syncHistoryRepository) FindByWorkspace(workspaceID string, limit, offset int) ([]*domain.SyncHistory, int64, error) {
	var history []*domain.SyncHistory
	var total int64

	query := r.db.Model(&domain.SyncHistory{}).Where("workspace_id = ?", workspaceID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("started_at DESC").Limit(limit).Offset(offset).Find(&history).Error
	return history, total, err
}
