package repository

import (
	"time"

	"boardpulse-backend/internal/task/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepository interface {
	Create(task *domain.Task) error
	Save(task *domain.Task) error
	FindByExternalID(workspaceID, externalID string) (*domain.Task, error)
	FindByWorkspace(workspaceID string, limit, offset int) ([]*domain.Task, int64, error)
	CountByWorkspace(workspaceID string) (int64, error)
}

// gormTaskRepository implements TaskRepository using GORM
type gormTaskRepository struct {
	db *gorm.DB
}

func NewGormTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

func (r *gormTaskRepository) Create(task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()
	return r.db.Create(task).Error
}

// Save writes every column. Reconciliation relies on the full overwrite so
// that custom fields removed on the tracker side revert to null.
func (r *gormTaskRepository) Save(task *domain.Task) error {
	task.UpdatedAt = time.Now()
	return r.db.Save(task).Error
}

func (r *gormTaskRepository) FindByExternalID(workspaceID, externalID string) (*domain.Task, error) {
	var task domain.Task
	err := r.db.Where("workspace_id = ? AND external_id = ?", workspaceID, externalID).First(&task).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *gormTaskRepository) FindByWorkspace(workspaceID string, limit, offset int) ([]*domain.Task, int64, error) {
	var tasks []*domain.Task
	var total int64

	query := r.db.Model(&domain.Task{}).Where("workspace_id = ?", workspaceID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Due date first (nulls last), then most recently updated on the tracker
	err := query.Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END, due_date ASC, date_updated DESC").
		Limit(limit).Offset(offset).Find(&tasks).Error

	return tasks, total, err
}

func (r *gormTaskRepository) CountByWorkspace(workspaceID string) (int64, error) {
	var total int64
	err := r.db.Model(&domain.Task{}).Where("workspace_id = ?", workspaceID).Count(&total).Error
	return total, err
}
