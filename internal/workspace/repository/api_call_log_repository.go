package repository

import (
	"log"
	"time"

	"boardpulse-backend/internal/workspace/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApiCallLogRepository interface {
	RecordCall(workspaceID, endpoint, method string, statusCode int, duration time.Duration, rateRemaining int)
	ListByWorkspace(workspaceID string, limit, offset int) ([]*domain.ApiCallLog, int64, error)
}

type apiCallLogRepository struct {
	db *gorm.DB
}

func NewApiCallLogRepository(db *gorm.DB) ApiCallLogRepository {
	return &apiCallLogRepository{db: db}
}

// RecordCall satisfies tracker.CallAuditor. Audit writes are best-effort:
// a failed insert must never fail the API call it describes.
func (r *apiCallLogRepository) RecordCall(workspaceID, endpoint, method string, statusCode int, duration time.Duration, rateRemaining int) {
	entry := &domain.ApiCallLog{
		ID:            uuid.New().String(),
		WorkspaceID:   workspaceID,
		Endpoint:      endpoint,
		Method:        method,
		StatusCode:    statusCode,
		DurationMs:    duration.Milliseconds(),
		RateRemaining: rateRemaining,
		CreatedAt:     time.Now(),
	}
	if err := r.db.Create(entry).Error; err != nil {
		log.Printf("[ApiCallLog] failed to record call %s %s: %v", method, endpoint, err)
	}
}

func (r *apiCallLogRepository) ListByWorkspace(workspaceID string, limit, offset int) ([]*domain.ApiCallLog, int64, error) {
	var logs []*domain.ApiCallLog
	var total int64

	query := r.db.Model(&domain.ApiCallLog{}).Where("workspace_id = ?", workspaceID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error
	return logs, total, err
}
