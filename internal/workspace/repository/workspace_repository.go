package repository

import (
	"time"

	"boardpulse-backend/internal/workspace/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkspaceRepository interface {
	Create(ws *domain.Workspace) error
	Update(ws *domain.Workspace) error
	FindByID(id string) (*domain.Workspace, error)
	FindByUserID(userID string) ([]*domain.Workspace, error)
	Deactivate(id string) error
}

type workspaceRepository struct {
	db *gorm.DB
}

func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &workspaceRepository{db: db}
}

func (r *workspaceRepository) Create(ws *domain.Workspace) error {
	if ws.ID == "" {
		ws.ID = uuid.New().String()
	}
	ws.Active = true
	ws.CreatedAt = time.Now()
	ws.UpdatedAt = time.Now()
	return r.db.Create(ws).Error
}

func (r *workspaceRepository) Update(ws *domain.Workspace) error {
	ws.UpdatedAt = time.Now()
	return r.db.Save(ws).Error
}

func (r *workspaceRepository) FindByID(id string) (*domain.Workspace, error) {
	var ws domain.Workspace
	err := r.db.Where("id = ?", id).First(&ws).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &ws, nil
}

func (r *workspaceRepository) FindByUserID(userID string) ([]*domain.Workspace, error) {
	var workspaces []*domain.Workspace
	err := r.db.Where("user_id = ? AND active = ?", userID, true).
		Order("created_at DESC").Find(&workspaces).Error
	return workspaces, err
}

func (r *workspaceRepository) Deactivate(id string) error {
	return r.db.Model(&domain.Workspace{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"active":     false,
			"updated_at": time.Now(),
		}).Error
}
