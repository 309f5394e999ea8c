package domain

import (
	"context"

	"boardpulse-backend/pkg/tracker"
)

// TrackerProvider is the slice of the tracker API the sync pipeline consumes.
// pkg/tracker.Client implements it; tests substitute fakes.
type TrackerProvider interface {
	GetSpaces(ctx context.Context, teamID string) ([]tracker.Space, error)
	GetFolders(ctx context.Context, spaceID string) ([]tracker.Folder, error)
	GetFolderlessLists(ctx context.Context, spaceID string) ([]tracker.List, error)
	GetFolderLists(ctx context.Context, folderID string) ([]tracker.List, error)
	GetList(ctx context.Context, listID string) (*tracker.List, error)
	GetTasksPage(ctx context.Context, listID string, page int) ([]tracker.Task, bool, error)
}

// ProviderFactory builds a provider bound to one workspace's credential.
// Quota state lives inside the returned provider, so each sync run gets an
// isolated rate-limit budget.
type ProviderFactory func(token, workspaceID string) (TrackerProvider, error)
