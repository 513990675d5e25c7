package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/repository"
	"github.com/mentorlog/mentorlog-api/pkg/authz"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"go.uber.org/zap"
)

// FollowUpService manages follow-up action items.
type FollowUpService struct {
	followUps repository.FollowUpStore
	logs      repository.MentorshipLogStore
	now       func() time.Time
}

// NewFollowUpService creates a new FollowUpService
func NewFollowUpService(followUps repository.FollowUpStore, logs repository.MentorshipLogStore) *FollowUpService {
	return &FollowUpService{
		followUps: followUps,
		logs:      logs,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List limits mentors to follow-ups on their own logs or assigned to them.
func (s *FollowUpService) List(ctx context.Context, actor *models.User, filter models.FollowUpFilter) (models.Paginated[*models.FollowUp], error) {
	if filter.Status != "" {
		switch models.FollowUpStatus(filter.Status) {
		case models.FollowUpPending, models.FollowUpInProgress, models.FollowUpCompleted:
		default:
			return models.Paginated[*models.FollowUp]{}, badRequest(fmt.Sprintf("Invalid status '%s'", filter.Status))
		}
	}
	filter.RestrictToUser = ""
	if !authz.IsReviewer(actor.Principal()) {
		filter.RestrictToUser = actor.ID
	}

	filter.Page = filter.Page.Normalize()
	items, total, err := s.followUps.List(ctx, filter)
	if err != nil {
		return models.Paginated[*models.FollowUp]{}, err
	}
	return models.NewPaginated(items, total, filter.Page), nil
}

func (s *FollowUpService) Get(ctx context.Context, actor *models.User, id string) (*models.FollowUp, error) {
	f, err := s.followUps.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgFollowUpNotFound)
	}
	if !canUpdateFollowUp(actor, f) {
		return nil, forbidden("You do not have permission to view this follow-up")
	}
	return f, nil
}

func (s *FollowUpService) Create(ctx context.Context, actor *models.User, req *models.FollowUpCreateRequest) (*models.FollowUp, error) {
	log, err := s.logs.GetByID(ctx, req.MentorshipLogID)
	if err != nil {
		return nil, lookupError(err, msgLogNotFound)
	}
	if !canManageLogRecords(actor, log.MentorID) {
		return nil, forbidden("You can only manage follow-ups for your own mentorship logs")
	}

	f, err := s.followUps.Create(ctx, log.ID, req.FollowUpInput)
	if err != nil {
		return nil, fmt.Errorf("failed to create follow-up: %w", err)
	}
	logger.Info("Follow-up created", zap.String("follow_up_id", f.ID), zap.String("log_id", log.ID))
	return f, nil
}

// canUpdateFollowUp: reviewers, the log's mentor or the assignee.
func canUpdateFollowUp(actor *models.User, f *models.FollowUp) bool {
	if authz.IsReviewer(actor.Principal()) || f.MentorID == actor.ID {
		return true
	}
	return f.AssignedTo != nil && *f.AssignedTo == actor.ID
}

func (s *FollowUpService) Update(ctx context.Context, actor *models.User, id string, req *models.FollowUpUpdateRequest) (*models.FollowUp, error) {
	f, err := s.followUps.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgFollowUpNotFound)
	}
	if !canUpdateFollowUp(actor, f) {
		return nil, forbidden("You do not have permission to update this follow-up")
	}

	req.Apply(f, s.now())
	return s.save(ctx, f)
}

// SetStatus backs the in-progress and complete shortcuts.
func (s *FollowUpService) SetStatus(ctx context.Context, actor *models.User, id string, status models.FollowUpStatus) (*models.FollowUp, error) {
	f, err := s.followUps.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgFollowUpNotFound)
	}
	if !canUpdateFollowUp(actor, f) {
		return nil, forbidden("You do not have permission to update this follow-up")
	}

	f.SetStatus(status, s.now())
	return s.save(ctx, f)
}

func (s *FollowUpService) save(ctx context.Context, f *models.FollowUp) (*models.FollowUp, error) {
	updated, err := s.followUps.Update(ctx, f)
	if err != nil {
		return nil, lookupError(err, msgFollowUpNotFound)
	}
	logger.Info("Follow-up updated", zap.String("follow_up_id", f.ID), zap.String("status", string(f.Status)))
	return updated, nil
}

func (s *FollowUpService) Delete(ctx context.Context, actor *models.User, id string) error {
	f, err := s.followUps.GetByID(ctx, id)
	if err != nil {
		return lookupError(err, msgFollowUpNotFound)
	}
	if !canManageLogRecords(actor, f.MentorID) {
		return forbidden("You can only manage follow-ups for your own mentorship logs")
	}
	if err := s.followUps.Delete(ctx, id); err != nil {
		return lookupError(err, msgFollowUpNotFound)
	}
	logger.Info("Follow-up deleted", zap.String("follow_up_id", id))
	return nil
}
