package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	syncdomain "boardpulse-backend/internal/sync/domain"
	taskdomain "boardpulse-backend/internal/task/domain"
	wsdomain "boardpulse-backend/internal/workspace/domain"
	"boardpulse-backend/pkg/config"
	"boardpulse-backend/pkg/crypto"
	"boardpulse-backend/pkg/tracker"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

const (
	testEncryptionKey = "unit-test-encryption-key"
	testTrackerToken  = "pk_unit_test"
	testWorkspaceID   = "ws-1"
	testUserID        = "user-1"
)

// fakeTaskRepo is an in-memory TaskRepository keyed like the unique index on
// (workspace_id, external_id).
type fakeTaskRepo struct {
	mu     sync.Mutex
	nextID int
	tasks  map[string]*taskdomain.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*taskdomain.Task)}
}

func taskKey(workspaceID, externalID string) string {
	return workspaceID + "/" + externalID
}

func (r *fakeTaskRepo) Create(task *taskdomain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task.ID == "" {
		r.nextID++
		task.ID = fmt.Sprintf("task-row-%d", r.nextID)
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()
	copied := *task
	r.tasks[taskKey(task.WorkspaceID, task.ExternalID)] = &copied
	return nil
}

func (r *fakeTaskRepo) Save(task *taskdomain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task.UpdatedAt = time.Now()
	copied := *task
	r.tasks[taskKey(task.WorkspaceID, task.ExternalID)] = &copied
	return nil
}

func (r *fakeTaskRepo) FindByExternalID(workspaceID, externalID string) (*taskdomain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[taskKey(workspaceID, externalID)]
	if !ok {
		return nil, nil
	}
	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepo) FindByWorkspace(workspaceID string, limit, offset int) ([]*taskdomain.Task, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*taskdomain.Task
	for _, task := range r.tasks {
		if task.WorkspaceID == workspaceID {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTaskRepo) CountByWorkspace(workspaceID string) (int64, error) {
	_, total, err := r.FindByWorkspace(workspaceID, 0, 0)
	return total, err
}

// fakeHistoryRepo records sync runs in memory.
type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []*syncdomain.SyncHistory
}

func (r *fakeHistoryRepo) Create(workspaceID, syncType string) (*syncdomain.SyncHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	hist := &syncdomain.SyncHistory{
		ID:          fmt.Sprintf("hist-%d", len(r.entries)+1),
		WorkspaceID: workspaceID,
		SyncType:    syncType,
		Status:      syncdomain.SyncStatusInProgress,
		StartedAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.entries = append(r.entries, hist)
	return hist, nil
}

func (r *fakeHistoryRepo) Finish(id, status string, total, created, updated int, errs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, hist := range r.entries {
		if hist.ID != id {
			continue
		}
		now := time.Now()
		hist.Status = status
		hist.TotalTasks = total
		hist.CreatedCount = created
		hist.UpdatedCount = updated
		hist.ErrorCount = len(errs)
		hist.CompletedAt = &now
		hist.UpdatedAt = now
		if len(errs) > 0 {
			payload, err := json.Marshal(errs)
			if err != nil {
				return err
			}
			hist.Errors = datatypes.JSON(payload)
		}
		return nil
	}
	return fmt.Errorf("history %s not found", id)
}

func (r *fakeHistoryRepo) FindByWorkspace(workspaceID string, limit, offset int) ([]*syncdomain.SyncHistory, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*syncdomain.SyncHistory
	for _, hist := range r.entries {
		if hist.WorkspaceID == workspaceID {
			out = append(out, hist)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeHistoryRepo) last(t *testing.T) *syncdomain.SyncHistory {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.entries)
	return r.entries[len(r.entries)-1]
}

// fakeWorkspaceRepo serves a fixed set of workspaces.
type fakeWorkspaceRepo struct {
	workspaces map[string]*wsdomain.Workspace
}

func (r *fakeWorkspaceRepo) Create(ws *wsdomain.Workspace) error { return nil }
func (r *fakeWorkspaceRepo) Update(ws *wsdomain.Workspace) error { return nil }

func (r *fakeWorkspaceRepo) FindByID(id string) (*wsdomain.Workspace, error) {
	return r.workspaces[id], nil
}

func (r *fakeWorkspaceRepo) FindByUserID(userID string) ([]*wsdomain.Workspace, error) {
	var out []*wsdomain.Workspace
	for _, ws := range r.workspaces {
		if ws.UserID == userID && ws.Active {
			out = append(out, ws)
		}
	}
	return out, nil
}

func (r *fakeWorkspaceRepo) Deactivate(id string) error {
	if ws, ok := r.workspaces[id]; ok {
		ws.Active = false
	}
	return nil
}

// fakeProvider serves a canned space -> folder -> list -> task hierarchy and
// pages tasks exactly like the real client does.
type fakeProvider struct {
	spaces        []tracker.Space
	spacesErr     error
	folders       map[string][]tracker.Folder
	foldersErr    map[string]error
	folderless    map[string][]tracker.List
	folderlessErr map[string]error
	folderLists   map[string][]tracker.List
	lists         map[string]*tracker.List
	listErr       map[string]error
	tasks         map[string][]tracker.Task
	tasksErr      map[string]error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		folders:       make(map[string][]tracker.Folder),
		foldersErr:    make(map[string]error),
		folderless:    make(map[string][]tracker.List),
		folderlessErr: make(map[string]error),
		folderLists:   make(map[string][]tracker.List),
		lists:         make(map[string]*tracker.List),
		listErr:       make(map[string]error),
		tasks:         make(map[string][]tracker.Task),
		tasksErr:      make(map[string]error),
	}
}

func (p *fakeProvider) GetSpaces(ctx context.Context, teamID string) ([]tracker.Space, error) {
	return p.spaces, p.spacesErr
}

func (p *fakeProvider) GetFolders(ctx context.Context, spaceID string) ([]tracker.Folder, error) {
	if err := p.foldersErr[spaceID]; err != nil {
		return nil, err
	}
	return p.folders[spaceID], nil
}

func (p *fakeProvider) GetFolderlessLists(ctx context.Context, spaceID string) ([]tracker.List, error) {
	if err := p.folderlessErr[spaceID]; err != nil {
		return nil, err
	}
	return p.folderless[spaceID], nil
}

func (p *fakeProvider) GetFolderLists(ctx context.Context, folderID string) ([]tracker.List, error) {
	return p.folderLists[folderID], nil
}

func (p *fakeProvider) GetList(ctx context.Context, listID string) (*tracker.List, error) {
	if err := p.listErr[listID]; err != nil {
		return nil, err
	}
	list, ok := p.lists[listID]
	if !ok {
		return nil, fmt.Errorf("list %s not found", listID)
	}
	return list, nil
}

func (p *fakeProvider) GetTasksPage(ctx context.Context, listID string, page int) ([]tracker.Task, bool, error) {
	if err := p.tasksErr[listID]; err != nil {
		return nil, false, err
	}
	all := p.tasks[listID]
	start := page * tracker.PageSize
	if start >= len(all) {
		return nil, true, nil
	}
	end := start + tracker.PageSize
	if end > len(all) {
		end = len(all)
	}
	chunk := all[start:end]
	return chunk, len(chunk) < tracker.PageSize, nil
}

// fakeEvents records SendToUser calls.
type fakeEvents struct {
	mu    sync.Mutex
	calls []string
}

func (e *fakeEvents) SendToUser(userID string, eventType string, payload interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, userID+":"+eventType)
}

type syncFixture struct {
	usecase   SyncUsecase
	taskRepo  *fakeTaskRepo
	histRepo  *fakeHistoryRepo
	wsRepo    *fakeWorkspaceRepo
	provider  *fakeProvider
	events    *fakeEvents
	workspace *wsdomain.Workspace
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	encrypted, err := crypto.Encrypt(testTrackerToken, testEncryptionKey)
	require.NoError(t, err)

	ws := &wsdomain.Workspace{
		ID:       testWorkspaceID,
		UserID:   testUserID,
		Name:     "Content Team",
		TeamID:   "team-1",
		APIToken: encrypted,
		Active:   true,
	}

	f := &syncFixture{
		taskRepo:  newFakeTaskRepo(),
		histRepo:  &fakeHistoryRepo{},
		wsRepo:    &fakeWorkspaceRepo{workspaces: map[string]*wsdomain.Workspace{ws.ID: ws}},
		provider:  newFakeProvider(),
		events:    &fakeEvents{},
		workspace: ws,
	}

	factory := func(token, workspaceID string) (syncdomain.TrackerProvider, error) {
		require.Equal(t, testTrackerToken, token)
		return f.provider, nil
	}

	cfg := &config.Config{EncryptionKey: testEncryptionKey}
	f.usecase = NewSyncUsecase(f.taskRepo, f.histRepo, f.wsRepo, factory, cfg)
	f.usecase.SetEventService(f.events)
	return f
}
