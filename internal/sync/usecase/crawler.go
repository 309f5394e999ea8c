package usecase

import (
	"context"
	"log"

	syncdomain "boardpulse-backend/internal/sync/domain"
	"boardpulse-backend/pkg/tracker"
)

// ListRef is one flattened node of the space -> folder -> list hierarchy,
// carrying the names needed to denormalize onto task rows.
type ListRef struct {
	ListID     string
	ListName   string
	FolderID   string
	FolderName string
	SpaceID    string
	SpaceName  string
}

func refFromList(l tracker.List) ListRef {
	ref := ListRef{ListID: l.ID, ListName: l.Name}
	if l.Folder != nil {
		ref.FolderID = l.Folder.ID
		ref.FolderName = l.Folder.Name
	}
	if l.Space != nil {
		ref.SpaceID = l.Space.ID
		ref.SpaceName = l.Space.Name
	}
	return ref
}

// collectSpaceLists flattens one space: folder-less lists first, then each
// folder's lists in the order folders came back. The ordering only matters
// for progress readability. A failing folder is logged and skipped; the
// folder-less fetch failing means the space itself is unreachable and the
// error propagates.
func collectSpaceLists(ctx context.Context, provider syncdomain.TrackerProvider, space tracker.Space) ([]ListRef, error) {
	refs := make([]ListRef, 0)
	seen := make(map[string]bool)

	add := func(l tracker.List, folder *tracker.Folder) {
		if seen[l.ID] {
			return
		}
		seen[l.ID] = true
		ref := refFromList(l)
		if ref.SpaceID == "" {
			ref.SpaceID = space.ID
			ref.SpaceName = space.Name
		}
		if folder != nil {
			ref.FolderID = folder.ID
			ref.FolderName = folder.Name
		}
		refs = append(refs, ref)
	}

	folderless, err := provider.GetFolderlessLists(ctx, space.ID)
	if err != nil {
		return nil, err
	}
	for _, l := range folderless {
		add(l, nil)
	}

	folders, err := provider.GetFolders(ctx, space.ID)
	if err != nil {
		return nil, err
	}
	for i := range folders {
		folder := folders[i]
		lists, err := provider.GetFolderLists(ctx, folder.ID)
		if err != nil {
			log.Printf("[Sync] failed to list folder %s (%s) in space %s: %v", folder.ID, folder.Name, space.ID, err)
			continue
		}
		for _, l := range lists {
			add(l, &folder)
		}
	}

	return refs, nil
}
