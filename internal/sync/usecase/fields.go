package usecase

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	taskdomain "boardpulse-backend/internal/task/domain"
	"boardpulse-backend/pkg/fieldmatch"
	"boardpulse-backend/pkg/tracker"

	"gorm.io/datatypes"
)

// Custom field extraction. Tracker custom fields are named by end users, so
// each typed column is filled from the first field whose label contains the
// target name as a case-insensitive substring. No match is not an error:
// most workspaces define only a handful of these fields, and the column
// simply stays null.
//
// When several labels match the same target ("qa" vs "qa (lm)") the first in
// the tracker's declaration order wins.

// matchField returns the first field whose name contains target, or nil.
func matchField(fields []tracker.CustomField, target string) *tracker.CustomField {
	labels := make([]string, len(fields))
	for i := range fields {
		labels[i] = fields[i].Name
	}
	if i := fieldmatch.FirstMatch(labels, target); i >= 0 {
		return &fields[i]
	}
	return nil
}

// extractDate reads an epoch-milliseconds value (string or number).
// Unparseable values yield nil rather than an error.
func extractDate(fields []tracker.CustomField, target string) *time.Time {
	f := matchField(fields, target)
	if f == nil || f.Value == nil {
		return nil
	}
	switch v := f.Value.(type) {
	case string:
		ms, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil
		}
		t := time.UnixMilli(ms).UTC()
		return &t
	case float64:
		t := time.UnixMilli(int64(v)).UTC()
		return &t
	default:
		return nil
	}
}

// extractCheckbox is truthy only for boolean true or the string "true".
func extractCheckbox(fields []tracker.CustomField, target string) *bool {
	f := matchField(fields, target)
	if f == nil {
		return nil
	}
	val := f.Value == true || f.Value == "true"
	return &val
}

// extractNumber parses floats; non-numeric strings yield nil.
func extractNumber(fields []tracker.CustomField, target string) *float64 {
	f := matchField(fields, target)
	if f == nil || f.Value == nil {
		return nil
	}
	switch v := f.Value.(type) {
	case float64:
		return &v
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

// extractUsers normalizes a user collection or a comma-separated string into
// a JSON array of trimmed names.
func extractUsers(fields []tracker.CustomField, target string) datatypes.JSON {
	f := matchField(fields, target)
	if f == nil || f.Value == nil {
		return nil
	}

	var names []string
	switch v := f.Value.(type) {
	case []interface{}:
		for _, item := range v {
			switch u := item.(type) {
			case map[string]interface{}:
				if name, ok := u["username"].(string); ok && name != "" {
					names = append(names, name)
				} else if email, ok := u["email"].(string); ok && email != "" {
					names = append(names, email)
				}
			case string:
				if t := strings.TrimSpace(u); t != "" {
					names = append(names, t)
				}
			}
		}
	case string:
		names = fieldmatch.SplitList(v)
	default:
		return nil
	}

	return marshalList(names)
}

// extractLabels normalizes a single label or a label collection into a JSON
// array.
func extractLabels(fields []tracker.CustomField, target string) datatypes.JSON {
	f := matchField(fields, target)
	if f == nil || f.Value == nil {
		return nil
	}

	var labels []string
	switch v := f.Value.(type) {
	case []interface{}:
		for _, item := range v {
			switch l := item.(type) {
			case map[string]interface{}:
				if name, ok := l["label"].(string); ok && name != "" {
					labels = append(labels, name)
				} else if name, ok := l["name"].(string); ok && name != "" {
					labels = append(labels, name)
				}
			case string:
				if t := strings.TrimSpace(l); t != "" {
					labels = append(labels, t)
				}
			}
		}
	case string:
		if t := strings.TrimSpace(v); t != "" {
			labels = []string{t}
		}
	default:
		return nil
	}

	return marshalList(labels)
}

func marshalList(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}

// applyCustomFields fills every custom column from the task's field
// collection. Unmatched targets assign nil, which on an update overwrites a
// previously set value: removing a field on the tracker side reverts the
// column on the next sync.
func applyCustomFields(t *taskdomain.Task, fields []tracker.CustomField) {
	t.BriefDate = extractDate(fields, "brief")
	t.KickoffDate = extractDate(fields, "kickoff")
	t.AlphaDraftDate = extractDate(fields, "alpha draft")
	t.BetaDraftDate = extractDate(fields, "beta draft")
	t.FinalDraftDate = extractDate(fields, "final draft")
	t.DesignReviewDate = extractDate(fields, "design review")
	t.CopyReviewDate = extractDate(fields, "copy review")
	t.QaDate = extractDate(fields, "qa")
	t.LegalReviewDate = extractDate(fields, "legal review")
	t.ScheduledDate = extractDate(fields, "scheduled")
	t.PublishedDate = extractDate(fields, "published")
	t.HandoffDate = extractDate(fields, "handoff")
	t.ArchivedDate = extractDate(fields, "archived")

	t.Billable = extractCheckbox(fields, "billable")
	t.ClientApproved = extractCheckbox(fields, "client approved")
	t.Rush = extractCheckbox(fields, "rush")
	t.Blocked = extractCheckbox(fields, "blocked")
	t.NeedsReview = extractCheckbox(fields, "needs review")
	t.Evergreen = extractCheckbox(fields, "evergreen")
	t.PaidPromotion = extractCheckbox(fields, "paid promotion")

	t.BudgetHours = extractNumber(fields, "budget hours")
	t.StoryPoints = extractNumber(fields, "story points")
	t.RevisionCount = extractNumber(fields, "revision")
	t.WordCount = extractNumber(fields, "word count")
	t.AssetCount = extractNumber(fields, "asset")
	t.CampaignBudget = extractNumber(fields, "campaign budget")

	t.Channels = extractLabels(fields, "channel")
	t.ContentTypes = extractLabels(fields, "content type")
	t.Platforms = extractLabels(fields, "platform")
	t.Regions = extractLabels(fields, "region")
	t.Audiences = extractLabels(fields, "audience")

	t.Reviewers = extractUsers(fields, "reviewer")
	t.Stakeholders = extractUsers(fields, "stakeholder")
	t.Editors = extractUsers(fields, "editor")
	t.Writers = extractUsers(fields, "writer")
}
