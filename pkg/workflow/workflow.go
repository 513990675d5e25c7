// Package workflow holds the mentorship log lifecycle. The API server applies
// transitions; clients only use it to derive the displayed status.
package workflow

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the persisted state of a mentorship log.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusCompleted Status = "completed"
)

// StatusReturned is a display-only state: a draft that carries a rejection.
const StatusReturned = "returned"

// Statuses lists every persisted status in lifecycle order.
var Statuses = []Status{StatusDraft, StatusSubmitted, StatusApproved, StatusCompleted}

// Action is a named workflow operation.
type Action string

const (
	ActionSubmit   Action = "submit"
	ActionApprove  Action = "approve"
	ActionReturn   Action = "return"
	ActionReject   Action = "reject"
	ActionComplete Action = "complete"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrReasonRequired    = errors.New("rejection reason is required")
	ErrUnknownStatus     = errors.New("unknown log status")
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusCompleted:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// TransitionError describes an action attempted from the wrong status.
type TransitionError struct {
	Action Action
	From   Status
}

func (e *TransitionError) Error() string {
	switch e.Action {
	case ActionSubmit:
		return fmt.Sprintf("Cannot submit %s log. Only draft logs can be submitted.", e.From)
	case ActionApprove:
		return fmt.Sprintf("Cannot approve %s log. Only submitted logs can be approved.", e.From)
	case ActionReturn:
		return fmt.Sprintf("Cannot return %s log to draft. Only submitted logs can be returned.", e.From)
	case ActionReject:
		return fmt.Sprintf("Cannot reject %s log. Only submitted logs can be rejected.", e.From)
	case ActionComplete:
		return fmt.Sprintf("Cannot complete %s log. Only approved logs can be completed.", e.From)
	default:
		return fmt.Sprintf("Cannot %s %s log.", e.Action, e.From)
	}
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Next returns the status reached by applying action to from.
func Next(from Status, action Action) (Status, error) {
	switch action {
	case ActionSubmit:
		if from == StatusDraft {
			return StatusSubmitted, nil
		}
	case ActionApprove:
		if from == StatusSubmitted {
			return StatusApproved, nil
		}
	case ActionReturn, ActionReject:
		if from == StatusSubmitted {
			return StatusDraft, nil
		}
	case ActionComplete:
		if from == StatusApproved {
			return StatusCompleted, nil
		}
	}
	return from, &TransitionError{Action: action, From: from}
}

// State is the workflow-relevant slice of a mentorship log.
type State struct {
	Status          Status
	SubmittedAt     *time.Time
	ApprovedAt      *time.Time
	ApprovedBy      *string
	RejectedAt      *time.Time
	RejectionReason *string
}

// Apply performs action on s. On error s is left unchanged.
func (s *State) Apply(action Action, actorID, reason string, now time.Time) error {
	next, err := Next(s.Status, action)
	if err != nil {
		return err
	}

	switch action {
	case ActionSubmit:
		s.SubmittedAt = &now
		s.RejectedAt = nil
		s.RejectionReason = nil
	case ActionApprove:
		approver := actorID
		s.ApprovedAt = &now
		s.ApprovedBy = &approver
	case ActionReturn:
		s.SubmittedAt = nil
	case ActionReject:
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return ErrReasonRequired
		}
		s.RejectedAt = &now
		s.RejectionReason = &reason
		s.SubmittedAt = nil
	case ActionComplete:
	}

	s.Status = next
	return nil
}

// IsReturned reports whether the log was sent back for revision.
func (s State) IsReturned() bool {
	return s.Status == StatusDraft && s.RejectedAt != nil
}

// DisplayStatus is the status shown to users.
func (s State) DisplayStatus() string {
	if s.IsReturned() {
		return StatusReturned
	}
	return string(s.Status)
}
