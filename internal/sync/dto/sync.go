package dto

import "boardpulse-backend/internal/sync/domain"

// SyncRequest selects the sync scope. Exactly one of ListID, SpaceID and
// SyncAll must be meaningful.
type SyncRequest struct {
	ListID  string `json:"list_id" form:"list_id"`
	SpaceID string `json:"space_id" form:"space_id"`
	SyncAll bool   `json:"sync_all" form:"sync_all"`
}

type SyncSummary struct {
	Total   int      `json:"total"`
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors,omitempty"`
}

type ImportSummary struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

// ProgressEvent is the payload streamed to interactive sync clients.
type ProgressEvent struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Progress int    `json:"progress"`
	Current  int    `json:"current,omitempty"`
	Total    int    `json:"total,omitempty"`
	Created  int    `json:"created,omitempty"`
	Updated  int    `json:"updated,omitempty"`
	Error    string `json:"error,omitempty"`
}

type SyncHistoryResponse struct {
	History []*domain.SyncHistory `json:"history"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
	Total   int64                 `json:"total"`
}
