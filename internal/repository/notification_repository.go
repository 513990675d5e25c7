package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorlog/mentorlog-api/internal/models"
)

// NotificationStore is the notification data access used by services.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	CreateSpecialist(ctx context.Context, n *models.Notification) (bool, error)
	List(ctx context.Context, userID string, filter models.NotificationFilter) ([]*models.Notification, int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID string, ids []string) (int, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, userID, id string) error
}

// NotificationRepository handles in-app notifications
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

const insertNotification = `
	INSERT INTO notifications AS n (user_id, notification_type, title, message, related_log_id,
		related_comment_id, extra_data)
	VALUES ($1, $2::notification_type, $3, $4, $5, $6, $7)`

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) (created *models.Notification, err error) {
	ctx, done := track(ctx, "notifications.create")
	defer done(&err)

	created, err = models.ScanNotification(r.pool.QueryRow(ctx, insertNotification+` RETURNING `+models.NotificationColumns,
		n.UserID, string(n.NotificationType), n.Title, n.Message, n.RelatedLogID, n.RelatedCommentID, n.ExtraData,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", mapError(err))
	}
	return created, nil
}

// CreateSpecialist inserts a specialist_log notification unless the user
// already has one for the log. It reports whether a row was written.
func (r *NotificationRepository) CreateSpecialist(ctx context.Context, n *models.Notification) (created bool, err error) {
	ctx, done := track(ctx, "notifications.create_specialist")
	defer done(&err)

	query := insertNotification + `
		ON CONFLICT (user_id, related_log_id) WHERE notification_type = 'specialist_log' DO NOTHING`
	tag, err := r.pool.Exec(ctx, query,
		n.UserID, string(models.NotificationSpecialistLog), n.Title, n.Message, n.RelatedLogID, n.RelatedCommentID, n.ExtraData,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create specialist notification: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *NotificationRepository) List(ctx context.Context, userID string, filter models.NotificationFilter) (items []*models.Notification, total int, err error) {
	ctx, done := track(ctx, "notifications.list")
	defer done(&err)

	var w whereBuilder
	w.add("n.user_id = ?", userID)
	if filter.UnreadOnly {
		w.addRaw("NOT n.is_read")
	}

	if err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications n`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	page := filter.Page.Normalize()
	suffix, args := w.page(page.Limit, page.Skip)
	query := `SELECT ` + models.NotificationColumns + ` FROM notifications n` + w.sql() + ` ORDER BY n.created_at DESC, n.id` + suffix

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	items, err = models.ScanNotifications(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan notifications: %w", err)
	}
	return items, total, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (count int, err error) {
	ctx, done := track(ctx, "notifications.count_unread")
	defer done(&err)

	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks the caller's notifications among ids as read and returns
// how many matched. Already-read notifications still count as matched.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID string, ids []string) (count int, err error) {
	ctx, done := track(ctx, "notifications.mark_read")
	defer done(&err)

	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = COALESCE(read_at, NOW())
		WHERE user_id = $1 AND id = ANY($2)`, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (count int, err error) {
	ctx, done := track(ctx, "notifications.mark_all_read")
	defer done(&err)

	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = NOW()
		WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Delete removes the notification only if it belongs to userID.
func (r *NotificationRepository) Delete(ctx context.Context, userID, id string) (err error) {
	ctx, done := track(ctx, "notifications.delete")
	defer done(&err)

	tag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ NotificationStore = (*NotificationRepository)(nil)
