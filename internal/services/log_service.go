package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/repository"
	"github.com/mentorlog/mentorlog-api/pkg/authz"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"github.com/mentorlog/mentorlog-api/pkg/metrics"
	"github.com/mentorlog/mentorlog-api/pkg/tracing"
	"github.com/mentorlog/mentorlog-api/pkg/trigger"
	"github.com/mentorlog/mentorlog-api/pkg/workflow"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Event types posted to the events webhook.
const (
	EventLogSubmitted = "log.submitted"
	EventLogApproved  = "log.approved"
	EventLogReturned  = "log.returned"
	EventLogRejected  = "log.rejected"
	EventLogCompleted = "log.completed"
)

var actionEvents = map[workflow.Action]string{
	workflow.ActionSubmit:   EventLogSubmitted,
	workflow.ActionApprove:  EventLogApproved,
	workflow.ActionReturn:   EventLogReturned,
	workflow.ActionReject:   EventLogRejected,
	workflow.ActionComplete: EventLogCompleted,
}

const msgConcurrentChange = "The log was changed by another request. Reload and try again."

// LogService owns mentorship logs and their workflow.
type LogService struct {
	logs       repository.MentorshipLogStore
	users      repository.UserStore
	facilities repository.FacilityStore
	notifier   *Notifier
	events     EventPublisher
	now        func() time.Time
}

// NewLogService creates a new LogService. events may be nil.
func NewLogService(
	logs repository.MentorshipLogStore,
	users repository.UserStore,
	facilities repository.FacilityStore,
	notifier *Notifier,
	events EventPublisher,
) *LogService {
	return &LogService{
		logs:       logs,
		users:      users,
		facilities: facilities,
		notifier:   notifier,
		events:     events,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// List returns the logs actor may see, newest visit first.
func (s *LogService) List(ctx context.Context, actor *models.User, filter models.MentorshipLogFilter) (models.Paginated[*models.MentorshipLog], error) {
	if filter.Status != "" {
		if _, err := workflow.ParseStatus(filter.Status); err != nil {
			return models.Paginated[*models.MentorshipLog]{}, badRequest(fmt.Sprintf("Invalid status '%s'", filter.Status))
		}
	}
	if !authz.IsReviewer(actor.Principal()) {
		filter.MentorID = ""
	}

	vis := models.LogVisibility{
		ViewerID:        actor.ID,
		All:             actor.Role == authz.RoleAdmin,
		IncludeMentees:  actor.Role == authz.RoleSupervisor,
		Specializations: actor.Specializations,
	}

	filter.Page = filter.Page.Normalize()
	logs, total, err := s.logs.List(ctx, filter, vis)
	if err != nil {
		return models.Paginated[*models.MentorshipLog]{}, err
	}
	return models.NewPaginated(logs, total, filter.Page), nil
}

// Get returns the log with nested records.
func (s *LogService) Get(ctx context.Context, actor *models.User, id string) (*models.MentorshipLog, error) {
	log, err := s.logs.GetDetail(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgLogNotFound)
	}
	if !canReadLog(actor, log) {
		return nil, forbidden("You don't have permission to view this log")
	}
	return log, nil
}

// Create stores a new draft owned by actor.
func (s *LogService) Create(ctx context.Context, actor *models.User, req *models.MentorshipLogCreateRequest) (*models.MentorshipLog, error) {
	if !req.VisitDate.Valid {
		return nil, badRequest("visit_date is required")
	}
	if _, err := s.facilities.GetByID(ctx, req.FacilityID); err != nil {
		return nil, lookupError(err, msgFacilityNotFound)
	}

	log := &models.MentorshipLog{
		FacilityID:                req.FacilityID,
		MentorID:                  actor.ID,
		VisitDate:                 req.VisitDate,
		Status:                    workflow.StatusDraft,
		InteractionType:           req.InteractionType,
		DurationHours:             req.DurationHours,
		DurationMinutes:           req.DurationMinutes,
		MenteesPresent:            req.MenteesPresent,
		ActivitiesConducted:       req.ActivitiesConducted,
		ActivitiesOtherSpecify:    req.ActivitiesOtherSpecify,
		ThematicAreas:             req.ThematicAreas,
		ThematicAreasOtherSpecify: req.ThematicAreasOtherSpecify,
		StrengthsObserved:         req.StrengthsObserved,
		GapsIdentified:            req.GapsIdentified,
		RootCauses:                req.RootCauses,
		ChallengesEncountered:     req.ChallengesEncountered,
		SolutionsProposed:         req.SolutionsProposed,
		SupportNeeded:             req.SupportNeeded,
		SuccessStories:            req.SuccessStories,
		AttachmentTypes:           req.AttachmentTypes,
	}
	log.Normalize()

	created, err := s.logs.Create(ctx, log, req.SkillsTransfers, req.FollowUps)
	if err != nil {
		return nil, fmt.Errorf("failed to create mentorship log: %w", err)
	}

	logger.Info("Mentorship log created",
		zap.String("log_id", created.ID),
		zap.String("mentor_id", actor.ID))
	return created, nil
}

// Update edits a draft. Only the creator may edit.
func (s *LogService) Update(ctx context.Context, actor *models.User, id string, req *models.MentorshipLogUpdateRequest) (*models.MentorshipLog, error) {
	log, err := s.logs.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgLogNotFound)
	}
	if log.MentorID != actor.ID {
		return nil, forbidden("Only the log creator can edit their log. Supervisors should use comments and approve/reject actions.")
	}
	if log.Status != workflow.StatusDraft {
		return nil, badRequest(fmt.Sprintf("Cannot edit %s logs. Only draft logs can be edited.", log.Status))
	}
	if req.VisitDate != nil && !req.VisitDate.Valid {
		return nil, badRequest("visit_date cannot be null")
	}
	if req.FacilityID != nil && *req.FacilityID != log.FacilityID {
		if _, err := s.facilities.GetByID(ctx, *req.FacilityID); err != nil {
			return nil, lookupError(err, msgFacilityNotFound)
		}
	}

	req.Apply(log)
	log.Normalize()

	updated, err := s.logs.Update(ctx, log, req.SkillsTransfers, req.FollowUps)
	if err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, conflict(msgConcurrentChange)
		}
		return nil, fmt.Errorf("failed to update mentorship log: %w", err)
	}

	logger.Info("Mentorship log updated", zap.String("log_id", id))
	return updated, nil
}

// Submit moves a draft to submitted and notifies matching specialists.
func (s *LogService) Submit(ctx context.Context, actor *models.User, id string) (*models.MentorshipLog, error) {
	log, err := s.logs.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgLogNotFound)
	}
	if actor.Role == authz.RoleMentor && log.MentorID != actor.ID {
		return nil, forbidden("You can only submit your own logs")
	}

	if err := s.transition(ctx, log, workflow.ActionSubmit, actor, ""); err != nil {
		return nil, err
	}

	specialists, err := s.users.ListSpecialists(ctx, log.ThematicAreas, actor.ID)
	if err != nil {
		logger.LogError(err, "Failed to load specialists", zap.String("log_id", id))
	} else if n := s.notifier.SpecialistsSubmitted(ctx, log, specialists); n > 0 {
		logger.Info("Specialists notified", zap.String("log_id", id), zap.Int("count", n))
	}

	return s.reload(ctx, id)
}

// Approve is open to admins for any log and to supervisors for their mentees.
func (s *LogService) Approve(ctx context.Context, actor *models.User, id string) (*models.MentorshipLog, error) {
	log, err := s.logs.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgLogNotFound)
	}

	if actor.Role != authz.RoleAdmin {
		ok, err := supervises(ctx, s.users, actor, log.MentorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, forbidden("You can only approve logs from your assigned mentees")
		}
	}

	if err := s.transition(ctx, log, workflow.ActionApprove, actor, ""); err != nil {
		return nil, err
	}

	if log.MentorID != actor.ID {
		s.notifier.Approved(ctx, log, actor, s.mentorOf(ctx, log))
	}
	return s.reload(ctx, id)
}

// ReturnToDraft sends a submitted log back without a reason.
func (s *LogService) ReturnToDraft(ctx context.Context, actor *models.User, id string) (*models.MentorshipLog, error) {
	log, err := s.logs.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgLogNotFound)
	}
	if err := s.transition(ctx, log, workflow.ActionReturn, actor, ""); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// Reject returns a submitted log with a reason and notifies the mentor
// unless they rejected it themselves.
func (s *LogService) Reject(ctx context.Context, actor *models.User, id, reason string) (*models.MentorshipLog, error) {
	log, err := s.logs.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgLogNotFound)
	}
	if err := s.transition(ctx, log, workflow.ActionReject, actor, reason); err != nil {
		return nil, err
	}

	if log.MentorID != actor.ID {
		s.notifier.Rejected(ctx, log, actor, s.mentorOf(ctx, log), *log.RejectionReason)
	}
	return s.reload(ctx, id)
}

// Complete closes an approved log.
func (s *LogService) Complete(ctx context.Context, actor *models.User, id string) (*models.MentorshipLog, error) {
	log, err := s.logs.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgLogNotFound)
	}
	if err := s.transition(ctx, log, workflow.ActionComplete, actor, ""); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// Delete removes a log. Non-admins may delete only their own drafts.
func (s *LogService) Delete(ctx context.Context, actor *models.User, id string) error {
	log, err := s.logs.GetByID(ctx, id)
	if err != nil {
		return lookupError(err, msgLogNotFound)
	}
	if !authz.CanDelete(actor.Principal(), log.MentorID) {
		return forbidden("You can only delete your own logs")
	}
	if actor.Role != authz.RoleAdmin && log.Status != workflow.StatusDraft {
		return badRequest("You can only delete draft logs")
	}
	if err := s.logs.Delete(ctx, id); err != nil {
		return lookupError(err, msgLogNotFound)
	}

	logger.Info("Mentorship log deleted", zap.String("log_id", id), zap.String("actor_id", actor.ID))
	return nil
}

// transition applies action to log in memory, persists it guarded by the
// previous status and publishes the event. log holds the new state on success.
func (s *LogService) transition(ctx context.Context, log *models.MentorshipLog, action workflow.Action, actor *models.User, reason string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "mentorship_log."+string(action),
		attribute.String("log.id", log.ID),
		attribute.String("log.status", string(log.Status)),
		attribute.String("actor.role", string(actor.Role)))
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	from := log.Status
	state := log.State()

	if err := state.Apply(action, actor.ID, reason, s.now()); err != nil {
		metrics.LogTransitions.WithLabelValues(string(action), "rejected").Inc()
		if errors.Is(err, workflow.ErrReasonRequired) {
			return badRequest("Rejection reason is required")
		}
		return badRequest(err.Error())
	}

	if err := s.logs.UpdateState(ctx, log.ID, from, state); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			metrics.LogTransitions.WithLabelValues(string(action), "conflict").Inc()
			return conflict(msgConcurrentChange)
		}
		metrics.LogTransitions.WithLabelValues(string(action), "error").Inc()
		return fmt.Errorf("failed to %s log: %w", action, err)
	}

	log.SetState(state)
	metrics.LogTransitions.WithLabelValues(string(action), "success").Inc()
	logger.Info("Mentorship log transition",
		zap.String("log_id", log.ID),
		zap.String("action", string(action)),
		zap.String("from", string(from)),
		zap.String("to", string(state.Status)),
		zap.String("actor_id", actor.ID))

	s.publish(log, action, actor)
	return nil
}

func (s *LogService) publish(log *models.MentorshipLog, action workflow.Action, actor *models.User) {
	if s.events == nil {
		return
	}
	data := map[string]interface{}{
		"status":    string(log.Status),
		"mentor_id": log.MentorID,
	}
	if log.RejectionReason != nil && action == workflow.ActionReject {
		data["rejection_reason"] = *log.RejectionReason
	}
	s.events.SendAsync(trigger.Event{
		Type:       actionEvents[action],
		LogID:      log.ID,
		ActorID:    actor.ID,
		OccurredAt: s.now(),
		Data:       data,
	})
}

func (s *LogService) mentorOf(ctx context.Context, log *models.MentorshipLog) *models.User {
	mentor, err := s.users.GetByID(ctx, log.MentorID)
	if err != nil {
		logger.Warn("Failed to load log mentor", zap.String("log_id", log.ID), zap.Error(err))
		return nil
	}
	return mentor
}

func (s *LogService) reload(ctx context.Context, id string) (*models.MentorshipLog, error) {
	log, err := s.logs.GetDetail(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgLogNotFound)
	}
	return log, nil
}
