package usecase

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	taskdomain "boardpulse-backend/internal/task/domain"
	taskrepo "boardpulse-backend/internal/task/repository"
	"boardpulse-backend/pkg/tracker"

	"gorm.io/datatypes"
)

// reconciler maps one fetched tracker task onto the local row and decides
// insert vs update. Each call is independent; errors here are per-task and
// the orchestrator decides whether to continue.
type reconciler struct {
	taskRepo taskrepo.TaskRepository
}

// parseEpochMillis converts the tracker's epoch-millisecond date strings.
// Empty means unset; anything non-numeric is a mapping error.
func parseEpochMillis(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed date %q", s)
	}
	t := time.UnixMilli(ms).UTC()
	return &t, nil
}

func jsonStrings(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	data, _ := json.Marshal(items)
	return datatypes.JSON(data)
}

// mapTrackerTask builds the full local row from an external task. The list
// ref supplies hierarchy names when the task payload omits them.
func mapTrackerTask(workspaceID string, ext *tracker.Task, ref ListRef) (*taskdomain.Task, error) {
	t := &taskdomain.Task{
		WorkspaceID: workspaceID,
		ExternalID:  ext.ID,
		Name:        ext.Name,
		Description: ext.Description,
		Status:      ext.Status.Status,
		Creator:     ext.Creator.Username,
		URL:         ext.URL,
		ListID:      ref.ListID,
		ListName:    ref.ListName,
		FolderID:    ref.FolderID,
		FolderName:  ref.FolderName,
		SpaceID:     ref.SpaceID,
		SpaceName:   ref.SpaceName,
	}

	if ext.Priority != nil {
		t.Priority = ext.Priority.Priority
	}
	if ext.List != nil {
		t.ListID = ext.List.ID
		t.ListName = ext.List.Name
	}
	if ext.Folder != nil {
		t.FolderID = ext.Folder.ID
		t.FolderName = ext.Folder.Name
	}
	if ext.Space != nil && ext.Space.Name != "" {
		t.SpaceID = ext.Space.ID
		t.SpaceName = ext.Space.Name
	}

	assignees := make([]string, 0, len(ext.Assignees))
	for _, a := range ext.Assignees {
		assignees = append(assignees, a.Username)
	}
	t.Assignees = jsonStrings(assignees)

	tags := make([]string, 0, len(ext.Tags))
	for _, tag := range ext.Tags {
		tags = append(tags, tag.Name)
	}
	t.Tags = jsonStrings(tags)

	var err error
	if t.DateCreated, err = parseEpochMillis(ext.DateCreated); err != nil {
		return nil, err
	}
	if t.DateUpdated, err = parseEpochMillis(ext.DateUpdated); err != nil {
		return nil, err
	}
	if t.DateClosed, err = parseEpochMillis(ext.DateClosed); err != nil {
		return nil, err
	}
	if t.DateDone, err = parseEpochMillis(ext.DateDone); err != nil {
		return nil, err
	}
	if t.DueDate, err = parseEpochMillis(ext.DueDate); err != nil {
		return nil, err
	}
	if t.StartDate, err = parseEpochMillis(ext.StartDate); err != nil {
		return nil, err
	}

	subtasks := make([]string, 0, len(ext.Subtasks))
	for _, s := range ext.Subtasks {
		subtasks = append(subtasks, s.ID)
	}
	t.SubtaskIDs = jsonStrings(subtasks)

	linked := make([]string, 0, len(ext.LinkedTasks))
	for _, l := range ext.LinkedTasks {
		linked = append(linked, l.TaskID)
	}
	t.LinkedTaskIDs = jsonStrings(linked)

	t.TimeSpentMs = ext.TimeSpent
	t.TimeEstimateMs = ext.TimeEstimate
	t.CommentCount = ext.CommentCount

	applyCustomFields(t, ext.CustomFields)

	return t, nil
}

// Reconcile upserts one task. The update path overwrites every column rather
// than diffing, so values that disappeared externally revert to null.
func (r *reconciler) Reconcile(workspaceID string, ext *tracker.Task, ref ListRef) (created bool, err error) {
	mapped, err := mapTrackerTask(workspaceID, ext, ref)
	if err != nil {
		return false, err
	}
	return r.upsert(mapped)
}

// upsert is shared with the spreadsheet importer, which maps rows itself.
func (r *reconciler) upsert(mapped *taskdomain.Task) (created bool, err error) {
	existing, err := r.taskRepo.FindByExternalID(mapped.WorkspaceID, mapped.ExternalID)
	if err != nil {
		return false, err
	}

	if existing == nil {
		return true, r.taskRepo.Create(mapped)
	}

	mapped.ID = existing.ID
	mapped.CreatedAt = existing.CreatedAt
	return false, r.taskRepo.Save(mapped)
}
