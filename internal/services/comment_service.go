package services

import (
	"context"
	"fmt"

	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/repository"
	"github.com/mentorlog/mentorlog-api/pkg/authz"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"go.uber.org/zap"
)

const msgCommentNotFound = "Comment not found"

// CommentService manages discussion threads on logs.
type CommentService struct {
	comments repository.CommentStore
	logs     repository.MentorshipLogStore
	users    repository.UserStore
	notifier *Notifier
}

// NewCommentService creates a new CommentService
func NewCommentService(comments repository.CommentStore, logs repository.MentorshipLogStore, users repository.UserStore, notifier *Notifier) *CommentService {
	return &CommentService{comments: comments, logs: logs, users: users, notifier: notifier}
}

func (s *CommentService) List(ctx context.Context, actor *models.User, logID string) ([]*models.Comment, error) {
	log, err := s.logs.GetByID(ctx, logID)
	if err != nil {
		return nil, lookupError(err, msgLogNotFound)
	}
	allowed, _, err := commentAccess(ctx, s.users, actor, log)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, forbidden("You don't have access to view comments on this log")
	}
	return s.comments.ListByLog(ctx, logID)
}

// Create adds a comment. The specialist flag is derived from how access was granted.
func (s *CommentService) Create(ctx context.Context, actor *models.User, logID string, req *models.CommentRequest) (*models.Comment, error) {
	log, err := s.logs.GetByID(ctx, logID)
	if err != nil {
		return nil, lookupError(err, msgLogNotFound)
	}
	allowed, specialist, err := commentAccess(ctx, s.users, actor, log)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, forbidden("You don't have access to comment on this log")
	}

	comment, err := s.comments.Create(ctx, logID, actor.ID, req.CommentText, specialist)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	if log.MentorID != actor.ID {
		s.notifier.Commented(ctx, log, actor, comment)
	}

	logger.Info("Comment added",
		zap.String("comment_id", comment.ID),
		zap.String("log_id", logID),
		zap.Bool("specialist", specialist))
	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, actor *models.User, id string, req *models.CommentRequest) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgCommentNotFound)
	}
	if comment.UserID != actor.ID && actor.Role != authz.RoleAdmin {
		return nil, forbidden("You can only update your own comments")
	}
	updated, err := s.comments.UpdateText(ctx, id, req.CommentText)
	if err != nil {
		return nil, lookupError(err, msgCommentNotFound)
	}
	return updated, nil
}

func (s *CommentService) Delete(ctx context.Context, actor *models.User, id string) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return lookupError(err, msgCommentNotFound)
	}
	if comment.UserID != actor.ID && actor.Role != authz.RoleAdmin {
		return forbidden("You can only delete your own comments")
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return lookupError(err, msgCommentNotFound)
	}
	logger.Info("Comment deleted", zap.String("comment_id", id), zap.String("actor_id", actor.ID))
	return nil
}
