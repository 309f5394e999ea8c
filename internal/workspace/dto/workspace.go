package dto

import "boardpulse-backend/internal/workspace/domain"

// ConnectRequest connects a workspace either with a personal API token or
// with an OAuth authorization code. Exactly one of the two must be set.
type ConnectRequest struct {
	Name     string `json:"name" binding:"required"`
	TeamID   string `json:"team_id"`
	APIToken string `json:"api_token"`
	Code     string `json:"code"`
}

type WorkspacesResponse struct {
	Workspaces []*domain.Workspace `json:"workspaces"`
}
