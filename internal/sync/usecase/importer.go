package usecase

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	syncdomain "boardpulse-backend/internal/sync/domain"
	syncdto "boardpulse-backend/internal/sync/dto"
	taskdomain "boardpulse-backend/internal/task/domain"
	"boardpulse-backend/pkg/fieldmatch"

	"github.com/xuri/excelize/v2"
)

// Spreadsheet import shares the reconcile-per-row upsert with the API sync,
// but columns are resolved by exact (case-insensitive) header name, not the
// fuzzy custom-field matcher: the file format is ours, so headers are known.

// importRow wraps one data row with header-based cell access.
type importRow struct {
	header map[string]int
	cells  []string
}

func (r importRow) get(name string) string {
	idx, ok := r.header[name]
	if !ok || idx >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[idx])
}

func (r importRow) getDate(name string) (*time.Time, error) {
	v := r.get(name)
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "01/02/2006"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	// Fall back to epoch milliseconds, the tracker's native form.
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		t := time.UnixMilli(ms).UTC()
		return &t, nil
	}
	return nil, fmt.Errorf("column %q: unparseable date %q", name, v)
}

func (r importRow) getNumber(name string) *float64 {
	v := r.get(name)
	if v == "" {
		return nil
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return &n
	}
	return nil
}

func (r importRow) getBool(name string) *bool {
	v := strings.ToLower(r.get(name))
	if v == "" {
		return nil
	}
	b := v == "true" || v == "yes" || v == "1"
	return &b
}

func (u *syncUsecase) ImportSpreadsheet(userID, workspaceID string, file io.Reader) (*syncdto.ImportSummary, error) {
	ws, err := u.getOwnedWorkspace(userID, workspaceID)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("unable to read spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, errors.New("spreadsheet has no data rows")
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := header["task id"]; !ok {
		return nil, errors.New(`spreadsheet is missing the "task id" column`)
	}

	hist, err := u.historyRepo.Create(ws.ID, syncdomain.SyncTypeFileImport)
	if err != nil {
		return nil, err
	}

	summary := &syncdto.ImportSummary{Errors: []string{}}
	total := 0
	for i, cells := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header
		row := importRow{header: header, cells: cells}

		externalID := row.get("task id")
		if externalID == "" {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: missing task id", rowNum))
			continue
		}
		total++

		mapped, err := mapImportRow(ws.ID, externalID, row)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d (task %s): %v", rowNum, externalID, err))
			continue
		}

		created, err := u.reconciler.upsert(mapped)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d (task %s): %v", rowNum, externalID, err))
			continue
		}
		if created {
			summary.Created++
		} else {
			summary.Updated++
		}
	}

	status := syncdomain.SyncStatusCompleted
	if len(summary.Errors) > 0 {
		status = syncdomain.SyncStatusCompletedWithErrors
	}
	if err := u.historyRepo.Finish(hist.ID, status, total, summary.Created, summary.Updated, summary.Errors); err != nil {
		log.Printf("[Import] failed to finalize history %s: %v", hist.ID, err)
	}

	log.Printf("[Import] workspace %s: %d created, %d updated, %d errors",
		ws.ID, summary.Created, summary.Updated, len(summary.Errors))
	return summary, nil
}

func mapImportRow(workspaceID, externalID string, row importRow) (*taskdomain.Task, error) {
	t := &taskdomain.Task{
		WorkspaceID: workspaceID,
		ExternalID:  externalID,
		Name:        row.get("name"),
		Description: row.get("description"),
		Status:      row.get("status"),
		Priority:    row.get("priority"),
		Creator:     row.get("creator"),
		URL:         row.get("url"),
		ListID:      row.get("list id"),
		ListName:    row.get("list name"),
		FolderID:    row.get("folder id"),
		FolderName:  row.get("folder name"),
		SpaceID:     row.get("space id"),
		SpaceName:   row.get("space name"),
	}
	if t.Name == "" {
		return nil, errors.New("missing name")
	}

	t.Assignees = jsonStrings(fieldmatch.SplitList(row.get("assignees")))
	t.Tags = jsonStrings(fieldmatch.SplitList(row.get("tags")))
	t.SubtaskIDs = jsonStrings(fieldmatch.SplitList(row.get("subtask ids")))
	t.LinkedTaskIDs = jsonStrings(fieldmatch.SplitList(row.get("linked task ids")))

	var err error
	dates := []struct {
		col  string
		dest **time.Time
	}{
		{"date created", &t.DateCreated},
		{"date updated", &t.DateUpdated},
		{"date closed", &t.DateClosed},
		{"date done", &t.DateDone},
		{"due date", &t.DueDate},
		{"start date", &t.StartDate},
		{"brief date", &t.BriefDate},
		{"kickoff date", &t.KickoffDate},
		{"alpha draft date", &t.AlphaDraftDate},
		{"beta draft date", &t.BetaDraftDate},
		{"final draft date", &t.FinalDraftDate},
		{"design review date", &t.DesignReviewDate},
		{"copy review date", &t.CopyReviewDate},
		{"qa date", &t.QaDate},
		{"legal review date", &t.LegalReviewDate},
		{"scheduled date", &t.ScheduledDate},
		{"published date", &t.PublishedDate},
		{"handoff date", &t.HandoffDate},
		{"archived date", &t.ArchivedDate},
	}
	for _, d := range dates {
		if *d.dest, err = row.getDate(d.col); err != nil {
			return nil, err
		}
	}

	if n := row.getNumber("time spent ms"); n != nil {
		t.TimeSpentMs = int64(*n)
	}
	if n := row.getNumber("time estimate ms"); n != nil {
		t.TimeEstimateMs = int64(*n)
	}
	if n := row.getNumber("comment count"); n != nil {
		t.CommentCount = int(*n)
	}

	t.Billable = row.getBool("billable")
	t.ClientApproved = row.getBool("client approved")
	t.Rush = row.getBool("rush")
	t.Blocked = row.getBool("blocked")
	t.NeedsReview = row.getBool("needs review")
	t.Evergreen = row.getBool("evergreen")
	t.PaidPromotion = row.getBool("paid promotion")

	t.BudgetHours = row.getNumber("budget hours")
	t.StoryPoints = row.getNumber("story points")
	t.RevisionCount = row.getNumber("revision count")
	t.WordCount = row.getNumber("word count")
	t.AssetCount = row.getNumber("asset count")
	t.CampaignBudget = row.getNumber("campaign budget")

	if v := row.get("channels"); v != "" {
		t.Channels = jsonStrings(fieldmatch.SplitList(v))
	}
	if v := row.get("content types"); v != "" {
		t.ContentTypes = jsonStrings(fieldmatch.SplitList(v))
	}
	if v := row.get("platforms"); v != "" {
		t.Platforms = jsonStrings(fieldmatch.SplitList(v))
	}
	if v := row.get("regions"); v != "" {
		t.Regions = jsonStrings(fieldmatch.SplitList(v))
	}
	if v := row.get("audiences"); v != "" {
		t.Audiences = jsonStrings(fieldmatch.SplitList(v))
	}
	if v := row.get("reviewers"); v != "" {
		t.Reviewers = jsonStrings(fieldmatch.SplitList(v))
	}
	if v := row.get("stakeholders"); v != "" {
		t.Stakeholders = jsonStrings(fieldmatch.SplitList(v))
	}
	if v := row.get("editors"); v != "" {
		t.Editors = jsonStrings(fieldmatch.SplitList(v))
	}
	if v := row.get("writers"); v != "" {
		t.Writers = jsonStrings(fieldmatch.SplitList(v))
	}

	return t, nil
}
