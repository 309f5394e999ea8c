package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Task is the central reporting entity, one row per tracker task. The natural
// key is (workspace_id, external_id); syncs update rows in place and never
// re-insert or delete them.
//
// Custom columns are only populated when the workspace's tracker schema
// happens to define a matching field; absent fields stay null, and a field
// removed on the tracker side reverts to null on the next sync because every
// update overwrites all columns.
type Task struct {
	ID          string `json:"id" gorm:"primaryKey"`
	WorkspaceID string `json:"workspace_id" gorm:"index;uniqueIndex:idx_workspace_external;not null"`
	ExternalID  string `json:"external_id" gorm:"uniqueIndex:idx_workspace_external;not null"`

	// Core fields
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	Priority    string         `json:"priority"`
	Creator     string         `json:"creator"`
	Assignees   datatypes.JSON `json:"assignees"`
	Tags        datatypes.JSON `json:"tags"`
	URL         string         `json:"url"`
	ListID      string         `json:"list_id" gorm:"index"`
	ListName    string         `json:"list_name"`
	FolderID    string         `json:"folder_id"`
	FolderName  string         `json:"folder_name"`
	SpaceID     string         `json:"space_id" gorm:"index"`
	SpaceName   string         `json:"space_name"`
	DateCreated *time.Time     `json:"date_created"`
	DateUpdated *time.Time     `json:"date_updated"`
	DateClosed  *time.Time     `json:"date_closed"`
	DateDone    *time.Time     `json:"date_done"`
	DueDate     *time.Time     `json:"due_date"`
	StartDate   *time.Time     `json:"start_date"`

	// Derived fields
	SubtaskIDs     datatypes.JSON `json:"subtask_ids"`
	LinkedTaskIDs  datatypes.JSON `json:"linked_task_ids"`
	TimeSpentMs    int64          `json:"time_spent_ms"`
	TimeEstimateMs int64          `json:"time_estimate_ms"`
	CommentCount   int            `json:"comment_count"`

	// Custom date fields
	BriefDate        *time.Time `json:"brief_date"`
	KickoffDate      *time.Time `json:"kickoff_date"`
	AlphaDraftDate   *time.Time `json:"alpha_draft_date"`
	BetaDraftDate    *time.Time `json:"beta_draft_date"`
	FinalDraftDate   *time.Time `json:"final_draft_date"`
	DesignReviewDate *time.Time `json:"design_review_date"`
	CopyReviewDate   *time.Time `json:"copy_review_date"`
	QaDate           *time.Time `json:"qa_date"`
	LegalReviewDate  *time.Time `json:"legal_review_date"`
	ScheduledDate    *time.Time `json:"scheduled_date"`
	PublishedDate    *time.Time `json:"published_date"`
	HandoffDate      *time.Time `json:"handoff_date"`
	ArchivedDate     *time.Time `json:"archived_date"`

	// Custom checkbox fields
	Billable       *bool `json:"billable"`
	ClientApproved *bool `json:"client_approved"`
	Rush           *bool `json:"rush"`
	Blocked        *bool `json:"blocked"`
	NeedsReview    *bool `json:"needs_review"`
	Evergreen      *bool `json:"evergreen"`
	PaidPromotion  *bool `json:"paid_promotion"`

	// Custom number fields
	BudgetHours    *float64 `json:"budget_hours"`
	StoryPoints    *float64 `json:"story_points"`
	RevisionCount  *float64 `json:"revision_count"`
	WordCount      *float64 `json:"word_count"`
	AssetCount     *float64 `json:"asset_count"`
	CampaignBudget *float64 `json:"campaign_budget"`

	// Custom label-set fields
	Channels     datatypes.JSON `json:"channels"`
	ContentTypes datatypes.JSON `json:"content_types"`
	Platforms    datatypes.JSON `json:"platforms"`
	Regions      datatypes.JSON `json:"regions"`
	Audiences    datatypes.JSON `json:"audiences"`

	// Custom user-set fields
	Reviewers    datatypes.JSON `json:"reviewers"`
	Stakeholders datatypes.JSON `json:"stakeholders"`
	Editors      datatypes.JSON `json:"editors"`
	Writers      datatypes.JSON `json:"writers"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
