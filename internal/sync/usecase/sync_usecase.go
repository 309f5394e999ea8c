package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	syncdomain "boardpulse-backend/internal/sync/domain"
	syncdto "boardpulse-backend/internal/sync/dto"
	"boardpulse-backend/internal/sync/repository"
	taskrepo "boardpulse-backend/internal/task/repository"
	wsdomain "boardpulse-backend/internal/workspace/domain"
	wsrepo "boardpulse-backend/internal/workspace/repository"
	"boardpulse-backend/pkg/config"
	"boardpulse-backend/pkg/crypto"
	"boardpulse-backend/pkg/tracker"
)

// batchSize groups task processing purely so progress can be reported after
// each chunk; it has no transactional meaning.
const batchSize = 50

var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrNotOwner          = errors.New("workspace does not belong to user")
	ErrInvalidScope      = errors.New("exactly one of list_id, space_id or sync_all must be set")
)

// ProgressFunc receives progress events during an interactive sync.
// Emission is fire-and-forget; a nil func disables it.
type ProgressFunc func(syncdto.ProgressEvent)

// EventService defines interface for sending notifications
type EventService interface {
	SendToUser(userID string, eventType string, payload interface{})
}

type SyncUsecase interface {
	SyncWorkspace(ctx context.Context, userID, workspaceID string, req *syncdto.SyncRequest, emit ProgressFunc) (*syncdto.SyncSummary, error)
	ImportSpreadsheet(userID, workspaceID string, file io.Reader) (*syncdto.ImportSummary, error)
	GetSyncHistory(userID, workspaceID string, limit, offset int) ([]*syncdomain.SyncHistory, int64, error)
	SetEventService(svc EventService)
}

type syncUsecase struct {
	taskRepo        taskrepo.TaskRepository
	historyRepo     repository.SyncHistoryRepository
	workspaceRepo   wsrepo.WorkspaceRepository
	providerFactory syncdomain.ProviderFactory
	config          *config.Config
	eventService    EventService
	reconciler      *reconciler
}

func NewSyncUsecase(taskRepo taskrepo.TaskRepository, historyRepo repository.SyncHistoryRepository, workspaceRepo wsrepo.WorkspaceRepository, providerFactory syncdomain.ProviderFactory, cfg *config.Config) SyncUsecase {
	return &syncUsecase{
		taskRepo:        taskRepo,
		historyRepo:     historyRepo,
		workspaceRepo:   workspaceRepo,
		providerFactory: providerFactory,
		config:          cfg,
		reconciler:      &reconciler{taskRepo: taskRepo},
	}
}

// SetEventService allows wiring EventService after creation
func (u *syncUsecase) SetEventService(svc EventService) {
	u.eventService = svc
}

func (u *syncUsecase) getOwnedWorkspace(userID, workspaceID string) (*wsdomain.Workspace, error) {
	ws, err := u.workspaceRepo.FindByID(workspaceID)
	if err != nil {
		return nil, err
	}
	if ws == nil || !ws.Active {
		return nil, ErrWorkspaceNotFound
	}
	if ws.UserID != userID {
		return nil, ErrNotOwner
	}
	return ws, nil
}

func validateScope(req *syncdto.SyncRequest) error {
	count := 0
	if req.ListID != "" {
		count++
	}
	if req.SpaceID != "" {
		count++
	}
	if req.SyncAll {
		count++
	}
	if count != 1 {
		return ErrInvalidScope
	}
	return nil
}

// SyncWorkspace runs one sync end to end: discover lists, page through
// tasks, reconcile each one, record a history row. Per-task and per-branch
// failures are contained; only errors before any task processing abort the
// run.
func (u *syncUsecase) SyncWorkspace(ctx context.Context, userID, workspaceID string, req *syncdto.SyncRequest, emit ProgressFunc) (*syncdto.SyncSummary, error) {
	if emit == nil {
		emit = func(syncdto.ProgressEvent) {}
	}
	if err := validateScope(req); err != nil {
		return nil, err
	}

	ws, err := u.getOwnedWorkspace(userID, workspaceID)
	if err != nil {
		return nil, err
	}

	hist, err := u.historyRepo.Create(ws.ID, syncdomain.SyncTypeAPI)
	if err != nil {
		return nil, err
	}

	summary, err := u.runSync(ctx, ws, req, hist.ID, emit)
	if err != nil {
		return nil, err
	}

	if u.eventService != nil {
		u.eventService.SendToUser(ws.UserID, "sync_completed", summary)
	}
	return summary, nil
}

// fail marks the history row failed and emits a terminal error event. Used
// only for fatal errors occurring before the task loop starts.
func (u *syncUsecase) fail(histID string, emit ProgressFunc, err error) error {
	if ferr := u.historyRepo.Finish(histID, syncdomain.SyncStatusFailed, 0, 0, 0, []string{err.Error()}); ferr != nil {
		log.Printf("[Sync] failed to finalize history %s: %v", histID, ferr)
	}
	emit(syncdto.ProgressEvent{Status: "error", Message: "sync failed", Progress: 100, Error: err.Error()})
	return err
}

func (u *syncUsecase) runSync(ctx context.Context, ws *wsdomain.Workspace, req *syncdto.SyncRequest, histID string, emit ProgressFunc) (*syncdto.SyncSummary, error) {
	emit(syncdto.ProgressEvent{Status: "discovering", Message: "resolving credentials", Progress: 0})

	token, err := crypto.Decrypt(ws.APIToken, u.config.EncryptionKey)
	if err != nil {
		return nil, u.fail(histID, emit, fmt.Errorf("credential resolution failed: %w", err))
	}

	provider, err := u.providerFactory(token, ws.ID)
	if err != nil {
		return nil, u.fail(histID, emit, err)
	}

	refs, err := u.discoverLists(ctx, provider, ws, req, emit)
	if err != nil {
		return nil, u.fail(histID, emit, err)
	}

	summary := &syncdto.SyncSummary{}
	for i, ref := range refs {
		// Progress within the task loop spans 10..95, split across lists.
		base := 10
		if len(refs) > 0 {
			base = 10 + i*85/len(refs)
		}
		emit(syncdto.ProgressEvent{
			Status:   "syncing",
			Message:  fmt.Sprintf("fetching tasks from list %s", ref.ListName),
			Progress: base,
			Created:  summary.Created,
			Updated:  summary.Updated,
		})

		tasks, err := u.fetchListTasks(ctx, provider, ref.ListID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, u.fail(histID, emit, ctx.Err())
			}
			// Branch failure: skip this list, keep the run alive.
			log.Printf("[Sync] failed to fetch tasks for list %s (%s): %v", ref.ListID, ref.ListName, err)
			continue
		}

		u.processTasks(ws.ID, tasks, ref, base, summary, emit)
	}

	status := syncdomain.SyncStatusCompleted
	if len(summary.Errors) > 0 {
		status = syncdomain.SyncStatusCompletedWithErrors
	}
	if err := u.historyRepo.Finish(histID, status, summary.Total, summary.Created, summary.Updated, summary.Errors); err != nil {
		log.Printf("[Sync] failed to finalize history %s: %v", histID, err)
	}

	emit(syncdto.ProgressEvent{
		Status:   status,
		Message:  fmt.Sprintf("sync finished: %d created, %d updated", summary.Created, summary.Updated),
		Progress: 100,
		Total:    summary.Total,
		Created:  summary.Created,
		Updated:  summary.Updated,
	})

	log.Printf("[Sync] workspace %s: %d total, %d created, %d updated, %d errors",
		ws.ID, summary.Total, summary.Created, summary.Updated, len(summary.Errors))
	return summary, nil
}

// discoverLists resolves the sync scope to a flat, ordered set of lists.
// Errors here are fatal: nothing has been processed yet.
func (u *syncUsecase) discoverLists(ctx context.Context, provider syncdomain.TrackerProvider, ws *wsdomain.Workspace, req *syncdto.SyncRequest, emit ProgressFunc) ([]ListRef, error) {
	switch {
	case req.ListID != "":
		list, err := provider.GetList(ctx, req.ListID)
		if err != nil {
			return nil, err
		}
		return []ListRef{refFromList(*list)}, nil

	case req.SpaceID != "":
		// The space listing is the only place the space's name is available;
		// task rows denormalize it, so resolve it before collecting.
		space := tracker.Space{ID: req.SpaceID}
		spaces, err := provider.GetSpaces(ctx, ws.TeamID)
		if err != nil {
			return nil, err
		}
		for _, s := range spaces {
			if s.ID == req.SpaceID {
				space = s
				break
			}
		}
		return collectSpaceLists(ctx, provider, space)

	default:
		emit(syncdto.ProgressEvent{Status: "discovering", Message: "listing spaces", Progress: 5})
		spaces, err := provider.GetSpaces(ctx, ws.TeamID)
		if err != nil {
			return nil, err
		}

		refs := make([]ListRef, 0)
		for _, space := range spaces {
			emit(syncdto.ProgressEvent{
				Status:   "discovering",
				Message:  fmt.Sprintf("scanning space %s", space.Name),
				Progress: 8,
			})
			spaceRefs, err := collectSpaceLists(ctx, provider, space)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				// One broken space must not abort a full sync.
				log.Printf("[Sync] skipping space %s (%s): %v", space.ID, space.Name, err)
				continue
			}
			refs = append(refs, spaceRefs...)
		}
		return refs, nil
	}
}

// fetchListTasks pages through a list. A full page always means one more
// request; a short page terminates.
func (u *syncUsecase) fetchListTasks(ctx context.Context, provider syncdomain.TrackerProvider, listID string) ([]tracker.Task, error) {
	var all []tracker.Task
	for page := 0; ; page++ {
		tasks, lastPage, err := provider.GetTasksPage(ctx, listID, page)
		if err != nil {
			return nil, err
		}
		all = append(all, tasks...)
		if lastPage {
			return all, nil
		}
	}
}

// processTasks reconciles sequentially, in chunks of batchSize for progress
// reporting. A failing task is logged, reported, and skipped; prior tasks in
// the chunk stay committed.
func (u *syncUsecase) processTasks(workspaceID string, tasks []tracker.Task, ref ListRef, baseProgress int, summary *syncdto.SyncSummary, emit ProgressFunc) {
	summary.Total += len(tasks)

	for start := 0; start < len(tasks); start += batchSize {
		end := start + batchSize
		if end > len(tasks) {
			end = len(tasks)
		}

		for i := start; i < end; i++ {
			ext := tasks[i]
			created, err := u.reconciler.Reconcile(workspaceID, &ext, ref)
			if err != nil {
				log.Printf("[Sync] task %s failed: %v", ext.ID, err)
				summary.Errors = append(summary.Errors, fmt.Sprintf("task %s: %v", ext.ID, err))
				continue
			}
			if created {
				summary.Created++
			} else {
				summary.Updated++
			}
		}

		emit(syncdto.ProgressEvent{
			Status:   "syncing",
			Message:  fmt.Sprintf("processed %d/%d tasks in %s", end, len(tasks), ref.ListName),
			Progress: baseProgress,
			Current:  end,
			Total:    len(tasks),
			Created:  summary.Created,
			Updated:  summary.Updated,
		})
	}
}

func (u *syncUsecase) GetSyncHistory(userID, workspaceID string, limit, offset int) ([]*syncdomain.SyncHistory, int64, error) {
	if _, err := u.getOwnedWorkspace(userID, workspaceID); err != nil {
		return nil, 0, err
	}
	return u.historyRepo.FindByWorkspace(workspaceID, limit, offset)
}
