package domain

import "time"

// Workspace is one tenant: a customer's connection to the external tracker.
// The API token is stored encrypted (AES-GCM, base64). Workspaces are
// soft-deactivated, never hard-deleted, because sync history references them.
type Workspace struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"not null"`
	TeamID    string    `json:"team_id" gorm:"not null"` // external organization id
	APIToken  string    `json:"-" gorm:"not null"`
	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApiCallLog is the audit trail of outbound tracker API calls, one row per
// completed or failed request, keyed by workspace.
type ApiCallLog struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	WorkspaceID   string    `json:"workspace_id" gorm:"index;not null"`
	Endpoint      string    `json:"endpoint"`
	Method        string    `json:"method"`
	StatusCode    int       `json:"status_code"`
	DurationMs    int64     `json:"duration_ms"`
	RateRemaining int       `json:"rate_remaining"`
	CreatedAt     time.Time `json:"created_at"`
}
