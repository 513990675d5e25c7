package client

import (
	"time"

	"github.com/mentorlog/mentorlog-api/pkg/workflow"
)

// Page is the paginated list envelope.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// ListOptions are the common list query parameters.
type ListOptions struct {
	Skip       int
	Limit      int
	Status     string
	FacilityID string
	MentorID   string
}

// Log is the client view of a mentorship log. Status fields come from the
// server and are never computed locally.
type Log struct {
	ID              string          `json:"id"`
	FacilityID      string          `json:"facility_id"`
	MentorID        string          `json:"mentor_id"`
	VisitDate       string          `json:"visit_date"`
	Status          workflow.Status `json:"status"`
	InteractionType *string         `json:"interaction_type"`
	ThematicAreas   []string        `json:"thematic_areas"`
	SubmittedAt     *time.Time      `json:"submitted_at"`
	ApprovedAt      *time.Time      `json:"approved_at"`
	ApprovedBy      *string         `json:"approved_by"`
	RejectedAt      *time.Time      `json:"rejected_at"`
	RejectionReason *string         `json:"rejection_reason"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// State returns the workflow fields of the log.
func (l *Log) State() workflow.State {
	return workflow.State{
		Status:          l.Status,
		SubmittedAt:     l.SubmittedAt,
		ApprovedAt:      l.ApprovedAt,
		ApprovedBy:      l.ApprovedBy,
		RejectedAt:      l.RejectedAt,
		RejectionReason: l.RejectionReason,
	}
}

// DisplayStatus is "returned" for drafts sent back for revision.
func (l *Log) DisplayStatus() string {
	return l.State().DisplayStatus()
}

// CreateLogRequest is the subset of log fields clients usually send.
type CreateLogRequest struct {
	FacilityID          string   `json:"facility_id"`
	VisitDate           string   `json:"visit_date"`
	InteractionType     string   `json:"interaction_type,omitempty"`
	DurationHours       *int     `json:"duration_hours,omitempty"`
	DurationMinutes     *int     `json:"duration_minutes,omitempty"`
	ActivitiesConducted []string `json:"activities_conducted,omitempty"`
	ThematicAreas       []string `json:"thematic_areas,omitempty"`
	StrengthsObserved   string   `json:"strengths_observed,omitempty"`
	GapsIdentified      string   `json:"gaps_identified,omitempty"`
}

// FollowUp is the client view of a follow-up action.
type FollowUp struct {
	ID              string  `json:"id"`
	MentorshipLogID string  `json:"mentorship_log_id"`
	ActionItem      string  `json:"action_item"`
	AssignedTo      *string `json:"assigned_to"`
	TargetDate      *string `json:"target_date"`
	Priority        *string `json:"priority"`
	Status          string  `json:"status"`
}

// DashboardCounts are the totals shown on the landing view.
type DashboardCounts struct {
	Logs      int
	FollowUps int
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type unreadCount struct {
	UnreadCount int `json:"unread_count"`
}
