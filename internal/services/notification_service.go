package services

import (
	"context"
	"fmt"

	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/repository"
)

// NotificationService exposes a user's own notifications.
type NotificationService struct {
	notifications repository.NotificationStore
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifications repository.NotificationStore) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) List(ctx context.Context, userID string, filter models.NotificationFilter) (models.Paginated[*models.Notification], error) {
	filter.Page = filter.Page.Normalize()
	items, total, err := s.notifications.List(ctx, userID, filter)
	if err != nil {
		return models.Paginated[*models.Notification]{}, err
	}
	return models.NewPaginated(items, total, filter.Page), nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (*models.UnreadCountResponse, error) {
	n, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.UnreadCountResponse{UnreadCount: n}, nil
}

// MarkRead fails with 404 when none of ids belong to the user.
func (s *NotificationService) MarkRead(ctx context.Context, userID string, ids []string) (*models.MessageResponse, error) {
	n, err := s.notifications.MarkRead(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, notFound("No notifications found with the provided IDs")
	}
	return &models.MessageResponse{Message: fmt.Sprintf("%d notification(s) marked as read", n)}, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (*models.MessageResponse, error) {
	n, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.MessageResponse{Message: fmt.Sprintf("%d notification(s) marked as read", n)}, nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	if err := s.notifications.Delete(ctx, userID, id); err != nil {
		return lookupError(err, "Notification not found")
	}
	return nil
}
