package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Sync types
const (
	SyncTypeAPI        = "api"
	SyncTypeFileImport = "file_import"
)

// Sync statuses. A row is created in_progress and transitions exactly once
// to a terminal status.
const (
	SyncStatusInProgress          = "in_progress"
	SyncStatusCompleted           = "completed"
	SyncStatusCompletedWithErrors = "completed_with_errors"
	SyncStatusFailed              = "failed"
)

// SyncHistory records one sync invocation per row.
type SyncHistory struct {
	ID           string         `json:"id" gorm:"primaryKey"`
	WorkspaceID  string         `json:"workspace_id" gorm:"index;not null"`
	SyncType     string         `json:"sync_type" gorm:"not null"`
	Status       string         `json:"status" gorm:"not null"`
	TotalTasks   int            `json:"total_tasks"`
	CreatedCount int            `json:"created_count"`
	UpdatedCount int            `json:"updated_count"`
	ErrorCount   int            `json:"error_count"`
	Errors       datatypes.JSON `json:"errors,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
