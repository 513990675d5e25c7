package models

import (
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// FollowUpStatus has its own lifecycle, independent of the parent log.
type FollowUpStatus string

const (
	FollowUpPending    FollowUpStatus = "pending"
	FollowUpInProgress FollowUpStatus = "in_progress"
	FollowUpCompleted  FollowUpStatus = "completed"
)

// IsOpen reports whether the follow-up still counts towards overdue work.
func (s FollowUpStatus) IsOpen() bool {
	return s == FollowUpPending || s == FollowUpInProgress
}

// FollowUp is an action item raised during a visit.
type FollowUp struct {
	ID                string         `json:"id"`
	MentorshipLogID   string         `json:"mentorship_log_id"`
	ActionItem        string         `json:"action_item"`
	ResponsiblePerson *string        `json:"responsible_person"`
	AssignedTo        *string        `json:"assigned_to"`
	TargetDate        pgtype.Date    `json:"target_date"`
	ResourcesNeeded   *string        `json:"resources_needed"`
	Priority          *string        `json:"priority"`
	Status            FollowUpStatus `json:"status"`
	Notes             *string        `json:"notes"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	CompletedAt       *time.Time     `json:"completed_at"`

	// MentorID is the owner of the parent log. It drives access checks.
	MentorID string `json:"-"`
}

// FollowUpInput is the nested follow-up shape inside log payloads.
type FollowUpInput struct {
	ActionItem        string      `json:"action_item" binding:"required,min=1"`
	ResponsiblePerson *string     `json:"responsible_person" binding:"omitempty,max=255"`
	AssignedTo        *string     `json:"assigned_to" binding:"omitempty,uuid"`
	TargetDate        pgtype.Date `json:"target_date"`
	ResourcesNeeded   *string     `json:"resources_needed"`
	Priority          *string     `json:"priority" binding:"omitempty,oneof=High Medium Low"`
	Notes             *string     `json:"notes"`
}

// FollowUpCreateRequest is the payload for POST /api/follow-ups.
type FollowUpCreateRequest struct {
	MentorshipLogID string `json:"mentorship_log_id" binding:"required,uuid"`
	FollowUpInput
}

// FollowUpUpdateRequest is the payload for PUT /api/follow-ups/:id.
type FollowUpUpdateRequest struct {
	ActionItem        *string         `json:"action_item" binding:"omitempty,min=1"`
	ResponsiblePerson *string         `json:"responsible_person" binding:"omitempty,max=255"`
	AssignedTo        *string         `json:"assigned_to" binding:"omitempty,uuid"`
	TargetDate        *pgtype.Date    `json:"target_date"`
	ResourcesNeeded   *string         `json:"resources_needed"`
	Priority          *string         `json:"priority" binding:"omitempty,oneof=High Medium Low"`
	Status            *FollowUpStatus `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
	Notes             *string         `json:"notes"`
}

// Apply copies set fields onto f and stamps completion when the status
// moves to completed.
func (req *FollowUpUpdateRequest) Apply(f *FollowUp, now time.Time) {
	if req.ActionItem != nil {
		f.ActionItem = *req.ActionItem
	}
	setIfPresent(&f.ResponsiblePerson, req.ResponsiblePerson)
	setIfPresent(&f.AssignedTo, req.AssignedTo)
	if req.TargetDate != nil {
		f.TargetDate = *req.TargetDate
	}
	setIfPresent(&f.ResourcesNeeded, req.ResourcesNeeded)
	setIfPresent(&f.Priority, req.Priority)
	setIfPresent(&f.Notes, req.Notes)
	if req.Status != nil {
		f.SetStatus(*req.Status, now)
	}
}

// SetStatus changes the status, keeping CompletedAt consistent with it.
func (f *FollowUp) SetStatus(status FollowUpStatus, now time.Time) {
	if status == FollowUpCompleted && f.Status != FollowUpCompleted {
		f.CompletedAt = &now
	}
	if status != FollowUpCompleted {
		f.CompletedAt = nil
	}
	f.Status = status
}

// FollowUpFilter narrows GET /api/follow-ups.
type FollowUpFilter struct {
	Status          string
	MentorshipLogID string
	AssignedTo      string
	Priority        string
	// RestrictToUser limits results to follow-ups on the user's logs or assigned to them.
	RestrictToUser string
	Page
}

// FollowUpColumns is the select list matching ScanFollowUp.
const FollowUpColumns = `fu.id, fu.mentorship_log_id, fu.action_item, fu.responsible_person,
	fu.assigned_to, fu.target_date, fu.resources_needed, fu.priority, fu.status::text,
	fu.notes, fu.created_at, fu.updated_at, fu.completed_at, l.mentor_id`

// ScanFollowUp scans a row selected with FollowUpColumns, joined to mentorship_logs l.
func ScanFollowUp(row pgx.Row) (*FollowUp, error) {
	var f FollowUp
	var status string

	err := row.Scan(
		&f.ID,
		&f.MentorshipLogID,
		&f.ActionItem,
		&f.ResponsiblePerson,
		&f.AssignedTo,
		&f.TargetDate,
		&f.ResourcesNeeded,
		&f.Priority,
		&status,
		&f.Notes,
		&f.CreatedAt,
		&f.UpdatedAt,
		&f.CompletedAt,
		&f.MentorID,
	)
	if err != nil {
		return nil, err
	}
	f.Status = FollowUpStatus(status)
	return &f, nil
}

// ScanFollowUps scans every row and closes rows.
func ScanFollowUps(rows pgx.Rows) ([]*FollowUp, error) {
	defer rows.Close()

	items := []*FollowUp{}
	for rows.Next() {
		f, err := ScanFollowUp(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
