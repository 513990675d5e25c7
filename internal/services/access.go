package services

import (
	"context"

	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/repository"
	"github.com/mentorlog/mentorlog-api/pkg/authz"
	"github.com/mentorlog/mentorlog-api/pkg/workflow"
)

// specialistVisible reports whether the log is open to specialist review.
func specialistVisible(log *models.MentorshipLog) bool {
	return log.Status == workflow.StatusSubmitted || log.Status == workflow.StatusApproved
}

// isSpecialistFor reports whether actor reaches log through a specialization.
func isSpecialistFor(actor *models.User, log *models.MentorshipLog) bool {
	return specialistVisible(log) && actor.HasSpecialization(log.ThematicAreas)
}

// supervises reports whether actor is the assigned supervisor of mentorID.
func supervises(ctx context.Context, users repository.UserStore, actor *models.User, mentorID string) (bool, error) {
	if actor.Role != authz.RoleSupervisor {
		return false, nil
	}
	return users.IsSupervisorOf(ctx, actor.ID, mentorID)
}

// canReadLog covers GET /mentorship-logs/:id.
func canReadLog(actor *models.User, log *models.MentorshipLog) bool {
	switch actor.Role {
	case authz.RoleAdmin, authz.RoleSupervisor:
		return true
	case authz.RoleMentor:
		return actor.ID == log.MentorID || isSpecialistFor(actor, log)
	default:
		return false
	}
}

// commentAccess is the comment thread rule. specialist is set when access
// is only granted through a specialization.
func commentAccess(ctx context.Context, users repository.UserStore, actor *models.User, log *models.MentorshipLog) (allowed, specialist bool, err error) {
	if actor.ID == log.MentorID || actor.Role == authz.RoleAdmin {
		return true, false, nil
	}
	ok, err := supervises(ctx, users, actor, log.MentorID)
	if err != nil {
		return false, false, err
	}
	if ok {
		return true, false, nil
	}
	if isSpecialistFor(actor, log) {
		return true, true, nil
	}
	return false, false, nil
}

// canManageLogRecords covers follow-up and attachment writes: reviewers on
// any log, mentors on their own.
func canManageLogRecords(actor *models.User, logMentorID string) bool {
	p := actor.Principal()
	return authz.IsReviewer(p) || authz.CanEdit(p, logMentorID)
}
