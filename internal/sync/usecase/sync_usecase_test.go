package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	syncdomain "boardpulse-backend/internal/sync/domain"
	syncdto "boardpulse-backend/internal/sync/dto"
	"boardpulse-backend/pkg/tracker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedSpace wires a space with one folder-less list and one folder holding a
// second list, each carrying the given tasks.
func seedSpace(p *fakeProvider, spaceID, spaceName string, tasks ...tracker.Task) {
	p.spaces = append(p.spaces, tracker.Space{ID: spaceID, Name: spaceName})

	looseID := spaceID + "-loose"
	folderID := spaceID + "-folder"
	folderedID := spaceID + "-foldered"

	p.folderless[spaceID] = []tracker.List{{ID: looseID, Name: spaceName + " Loose"}}
	p.folders[spaceID] = []tracker.Folder{{ID: folderID, Name: spaceName + " Folder"}}
	p.folderLists[folderID] = []tracker.List{{ID: folderedID, Name: spaceName + " Foldered"}}

	half := len(tasks) / 2
	p.tasks[looseID] = tasks[:half]
	p.tasks[folderedID] = tasks[half:]
}

func makeTasks(prefix string, n int) []tracker.Task {
	tasks := make([]tracker.Task, n)
	for i := range tasks {
		tasks[i] = tracker.Task{
			ID:          fmt.Sprintf("%s-%d", prefix, i),
			Name:        fmt.Sprintf("Task %s %d", prefix, i),
			Status:      tracker.Status{Status: "in progress"},
			DateCreated: "1700000000000",
		}
	}
	return tasks
}

func TestSyncScopeValidation(t *testing.T) {
	f := newSyncFixture(t)

	for name, req := range map[string]*syncdto.SyncRequest{
		"none":              {},
		"list and space":    {ListID: "l1", SpaceID: "s1"},
		"space and all":     {SpaceID: "s1", SyncAll: true},
		"all three at once": {ListID: "l1", SpaceID: "s1", SyncAll: true},
	} {
		_, err := f.usecase.SyncWorkspace(context.Background(), testUserID, testWorkspaceID, req, nil)
		assert.ErrorIs(t, err, ErrInvalidScope, name)
	}

	// Scope errors are rejected before a history row is opened.
	assert.Empty(t, f.histRepo.entries)
}

func TestSyncWorkspaceOwnership(t *testing.T) {
	f := newSyncFixture(t)
	req := &syncdto.SyncRequest{SyncAll: true}

	_, err := f.usecase.SyncWorkspace(context.Background(), testUserID, "nope", req, nil)
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)

	_, err = f.usecase.SyncWorkspace(context.Background(), "intruder", testWorkspaceID, req, nil)
	assert.ErrorIs(t, err, ErrNotOwner)

	f.workspace.Active = false
	_, err = f.usecase.SyncWorkspace(context.Background(), testUserID, testWorkspaceID, req, nil)
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestSyncAllIsIdempotent(t *testing.T) {
	f := newSyncFixture(t)
	seedSpace(f.provider, "space-a", "Editorial", makeTasks("a", 4)...)
	seedSpace(f.provider, "space-b", "Design", makeTasks("b", 2)...)

	req := &syncdto.SyncRequest{SyncAll: true}

	first, err := f.usecase.SyncWorkspace(context.Background(), testUserID, testWorkspaceID, req, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, first.Total)
	assert.Equal(t, 6, first.Created)
	assert.Equal(t, 0, first.Updated)
	assert.Empty(t, first.Errors)

	second, err := f.usecase.SyncWorkspace(context.Background(), testUserID, testWorkspaceID, req, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, second.Total)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 6, second.Updated)

	// Re-running never duplicates rows.
	total, err := f.taskRepo.CountByWorkspace(testWorkspaceID)
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)

	require.Len(t, f.histRepo.entries, 2)
	for _, hist := range f.histRepo.entries {
		assert.Equal(t, syncdomain.SyncStatusCompleted, hist.Status)
		assert.Equal(t, syncdomain.SyncTypeAPI, hist.SyncType)
	}

	assert.Equal(t, []string{testUserID + ":sync_completed", testUserID + ":sync_completed"}, f.events.calls)
}

func TestSyncContainsPerTaskFailures(t *testing.T) {
	f := newSyncFixture(t)

	tasks := makeTasks("t", 3)
	tasks[1].DateCreated = "not-a-date"
	f.provider.lists["list-1"] = &tracker.List{ID: "list-1", Name: "Pipeline"}
	f.provider.tasks["list-1"] = tasks

	req := &syncdto.SyncRequest{ListID: "list-1"}
	summary, err := f.usecase.SyncWorkspace(context.Background(), testUserID, testWorkspaceID, req, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Created)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "task t-1")
	assert.Contains(t, summary.Errors[0], "malformed date")

	// Tasks around the failing one are committed.
	for _, id := range []string{"t-0", "t-2"} {
		row, err := f.taskRepo.FindByExternalID(testWorkspaceID, id)
		require.NoError(t, err)
		assert.NotNil(t, row, id)
	}
	row, err := f.taskRepo.FindByExternalID(testWorkspaceID, "t-1")
	require.NoError(t, err)
	assert.Nil(t, row)

	hist := f.histRepo.last(t)
	assert.Equal(t, syncdomain.SyncStatusCompletedWithErrors, hist.Status)
	assert.Equal(t, 1, hist.ErrorCount)
}

func TestSyncAllSkipsBrokenSpace(t *testing.T) {
	f := newSyncFixture(t)
	seedSpace(f.provider, "space-ok", "Editorial", makeTasks("ok", 4)...)
	seedSpace(f.provider, "space-bad", "Design", makeTasks("bad", 2)...)
	f.provider.folderlessErr["space-bad"] = errors.New("503 from tracker")

	req := &syncdto.SyncRequest{SyncAll: true}
	summary, err := f.usecase.SyncWorkspace(context.Background(), testUserID, testWorkspaceID, req, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 4, summary.Created)
	assert.Empty(t, summary.Errors)

	row, err := f.taskRepo.FindByExternalID(testWorkspaceID, "bad-0")
	require.NoError(t, err)
	assert.Nil(t, row)

	// A skipped space degrades coverage, not the run's status.
	assert.Equal(t, syncdomain.SyncStatusCompleted, f.histRepo.last(t).Status)
}

func TestSyncSkipsListWhoseTasksFailToFetch(t *testing.T) {
	f := newSyncFixture(t)
	seedSpace(f.provider, "space-a", "Editorial", makeTasks("a", 4)...)
	f.provider.tasksErr["space-a-foldered"] = errors.New("timeout")

	req := &syncdto.SyncRequest{SpaceID: "space-a"}
	summary, err := f.usecase.SyncWorkspace(context.Background(), testUserID, testWorkspaceID, req, nil)
	require.NoError(t, err)

	// Only the folder-less list's half was processed.
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, syncdomain.SyncStatusCompleted, f.histRepo.last(t).Status)
}

func TestSyncFatalDiscoveryFailure(t *testing.T) {
	f := newSyncFixture(t)
	f.provider.listErr["list-x"] = errors.New("401 from tracker")

	var events []syncdto.ProgressEvent
	emit := func(evt syncdto.ProgressEvent) { events = append(events, evt) }

	req := &syncdto.SyncRequest{ListID: "list-x"}
	_, err := f.usecase.SyncWorkspace(context.Background(), testUserID, testWorkspaceID, req, emit)
	require.Error(t, err)

	hist := f.histRepo.last(t)
	assert.Equal(t, syncdomain.SyncStatusFailed, hist.Status)
	assert.Equal(t, 1, hist.ErrorCount)

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, "error", last.Status)
	assert.Equal(t, 100, last.Progress)
	assert.NotEmpty(t, last.Error)

	assert.Empty(t, f.events.calls)
}

func TestSyncCancelledContextAborts(t *testing.T) {
	f := newSyncFixture(t)
	seedSpace(f.provider, "space-a", "Editorial", makeTasks("a", 4)...)
	f.provider.tasksErr["space-a-loose"] = context.Canceled

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := &syncdto.SyncRequest{SpaceID: "space-a"}
	_, err := f.usecase.SyncWorkspace(ctx, testUserID, testWorkspaceID, req, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, syncdomain.SyncStatusFailed, f.histRepo.last(t).Status)
}

func TestSyncEmitsTerminalProgressEvent(t *testing.T) {
	f := newSyncFixture(t)
	seedSpace(f.provider, "space-a", "Editorial", makeTasks("a", 2)...)

	var events []syncdto.ProgressEvent
	emit := func(evt syncdto.ProgressEvent) { events = append(events, evt) }

	req := &syncdto.SyncRequest{SyncAll: true}
	_, err := f.usecase.SyncWorkspace(context.Background(), testUserID, testWorkspaceID, req, emit)
	require.NoError(t, err)

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, syncdomain.SyncStatusCompleted, last.Status)
	assert.Equal(t, 100, last.Progress)
	assert.Equal(t, 2, last.Created)

	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].Progress, events[i-1].Progress)
	}
}

func TestSyncHierarchyDenormalizedOntoRows(t *testing.T) {
	f := newSyncFixture(t)
	seedSpace(f.provider, "space-a", "Editorial", makeTasks("a", 2)...)

	req := &syncdto.SyncRequest{SpaceID: "space-a"}
	_, err := f.usecase.SyncWorkspace(context.Background(), testUserID, testWorkspaceID, req, nil)
	require.NoError(t, err)

	loose, err := f.taskRepo.FindByExternalID(testWorkspaceID, "a-0")
	require.NoError(t, err)
	require.NotNil(t, loose)
	assert.Equal(t, "space-a-loose", loose.ListID)
	assert.Equal(t, "Editorial Loose", loose.ListName)
	assert.Empty(t, loose.FolderID)
	assert.Equal(t, "space-a", loose.SpaceID)
	assert.Equal(t, "Editorial", loose.SpaceName)

	foldered, err := f.taskRepo.FindByExternalID(testWorkspaceID, "a-1")
	require.NoError(t, err)
	require.NotNil(t, foldered)
	assert.Equal(t, "space-a-foldered", foldered.ListID)
	assert.Equal(t, "space-a-folder", foldered.FolderID)
	assert.Equal(t, "Editorial Folder", foldered.FolderName)
}

func TestSyncSpaceScopeUnknownSpaceFallsBackToID(t *testing.T) {
	f := newSyncFixture(t)

	// The space serves lists but is absent from the team's space listing, so
	// only its id can be denormalized.
	f.provider.folderless["space-ghost"] = []tracker.List{{ID: "list-g", Name: "Ghost"}}
	f.provider.tasks["list-g"] = makeTasks("g", 2)

	req := &syncdto.SyncRequest{SpaceID: "space-ghost"}
	summary, err := f.usecase.SyncWorkspace(context.Background(), testUserID, testWorkspaceID, req, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)

	row, err := f.taskRepo.FindByExternalID(testWorkspaceID, "g-0")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "space-ghost", row.SpaceID)
	assert.Empty(t, row.SpaceName)
}

func TestSyncSpaceScopeSpaceListingFailureIsFatal(t *testing.T) {
	f := newSyncFixture(t)
	seedSpace(f.provider, "space-a", "Editorial", makeTasks("a", 2)...)
	f.provider.spacesErr = errors.New("500 from tracker")

	req := &syncdto.SyncRequest{SpaceID: "space-a"}
	_, err := f.usecase.SyncWorkspace(context.Background(), testUserID, testWorkspaceID, req, nil)
	require.Error(t, err)
	assert.Equal(t, syncdomain.SyncStatusFailed, f.histRepo.last(t).Status)
}

func TestSyncPagesThroughLongLists(t *testing.T) {
	f := newSyncFixture(t)
	f.provider.lists["list-big"] = &tracker.List{ID: "list-big", Name: "Backlog"}
	f.provider.tasks["list-big"] = makeTasks("big", tracker.PageSize*2+37)

	req := &syncdto.SyncRequest{ListID: "list-big"}
	summary, err := f.usecase.SyncWorkspace(context.Background(), testUserID, testWorkspaceID, req, nil)
	require.NoError(t, err)

	assert.Equal(t, tracker.PageSize*2+37, summary.Total)
	assert.Equal(t, tracker.PageSize*2+37, summary.Created)
}

func TestGetSyncHistoryRequiresOwnership(t *testing.T) {
	f := newSyncFixture(t)

	_, _, err := f.usecase.GetSyncHistory("intruder", testWorkspaceID, 10, 0)
	assert.ErrorIs(t, err, ErrNotOwner)

	seedSpace(f.provider, "space-a", "Editorial", makeTasks("a", 2)...)
	_, err = f.usecase.SyncWorkspace(context.Background(), testUserID, testWorkspaceID, &syncdto.SyncRequest{SyncAll: true}, nil)
	require.NoError(t, err)

	history, total, err := f.usecase.GetSyncHistory(testUserID, testWorkspaceID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, history, 1)
	assert.Equal(t, syncdomain.SyncStatusCompleted, history[0].Status)
	assert.NotNil(t, history[0].CompletedAt)
}
