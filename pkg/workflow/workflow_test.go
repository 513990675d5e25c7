package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		action  Action
		want    Status
		wantErr bool
	}{
		{name: "submit draft", from: StatusDraft, action: ActionSubmit, want: StatusSubmitted},
		{name: "approve submitted", from: StatusSubmitted, action: ActionApprove, want: StatusApproved},
		{name: "return submitted", from: StatusSubmitted, action: ActionReturn, want: StatusDraft},
		{name: "reject submitted", from: StatusSubmitted, action: ActionReject, want: StatusDraft},
		{name: "complete approved", from: StatusApproved, action: ActionComplete, want: StatusCompleted},
		{name: "submit submitted", from: StatusSubmitted, action: ActionSubmit, wantErr: true},
		{name: "approve draft", from: StatusDraft, action: ActionApprove, wantErr: true},
		{name: "reject approved", from: StatusApproved, action: ActionReject, wantErr: true},
		{name: "complete submitted", from: StatusSubmitted, action: ActionComplete, wantErr: true},
		{name: "submit completed", from: StatusCompleted, action: ActionSubmit, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.from, tt.action)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.from, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransitionError_Message(t *testing.T) {
	_, err := Next(StatusApproved, ActionSubmit)
	assert.EqualError(t, err, "Cannot submit approved log. Only draft logs can be submitted.")

	_, err = Next(StatusDraft, ActionReturn)
	assert.EqualError(t, err, "Cannot return draft log to draft. Only submitted logs can be returned.")
}

func TestApply_RejectThenResubmit(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := &State{Status: StatusSubmitted, SubmittedAt: &now}

	require.NoError(t, s.Apply(ActionReject, "sup-1", "incomplete assessment", now.Add(time.Hour)))

	assert.Equal(t, StatusDraft, s.Status)
	require.NotNil(t, s.RejectedAt)
	require.NotNil(t, s.RejectionReason)
	assert.Equal(t, "incomplete assessment", *s.RejectionReason)
	assert.Nil(t, s.SubmittedAt)
	assert.True(t, s.IsReturned())
	assert.Equal(t, "returned", s.DisplayStatus())

	require.NoError(t, s.Apply(ActionSubmit, "mentor-1", "", now.Add(2*time.Hour)))

	assert.Equal(t, StatusSubmitted, s.Status)
	assert.Nil(t, s.RejectedAt)
	assert.Nil(t, s.RejectionReason)
	assert.NotNil(t, s.SubmittedAt)
	assert.False(t, s.IsReturned())
	assert.Equal(t, "submitted", s.DisplayStatus())
}

func TestApply_RejectRequiresReason(t *testing.T) {
	s := &State{Status: StatusSubmitted}

	err := s.Apply(ActionReject, "sup-1", "   ", time.Now())

	assert.True(t, errors.Is(err, ErrReasonRequired))
	assert.Equal(t, StatusSubmitted, s.Status)
	assert.Nil(t, s.RejectedAt)
}

func TestApply_Approve(t *testing.T) {
	now := time.Now()
	s := &State{Status: StatusSubmitted}

	require.NoError(t, s.Apply(ActionApprove, "sup-1", "", now))

	assert.Equal(t, StatusApproved, s.Status)
	require.NotNil(t, s.ApprovedBy)
	assert.Equal(t, "sup-1", *s.ApprovedBy)
	assert.Equal(t, now, *s.ApprovedAt)

	require.NoError(t, s.Apply(ActionComplete, "admin-1", "", now))
	assert.Equal(t, StatusCompleted, s.Status)
}

func TestApply_ReturnClearsSubmittedOnly(t *testing.T) {
	now := time.Now()
	s := &State{Status: StatusSubmitted, SubmittedAt: &now}

	require.NoError(t, s.Apply(ActionReturn, "sup-1", "", now))

	assert.Equal(t, StatusDraft, s.Status)
	assert.Nil(t, s.SubmittedAt)
	assert.Nil(t, s.RejectedAt)
	assert.Equal(t, "draft", s.DisplayStatus())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("approved")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, s)

	_, err = ParseStatus("returned")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}
