package models

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// NotificationType is what triggered an in-app notification.
type NotificationType string

const (
	NotificationSpecialistLog NotificationType = "specialist_log"
	NotificationComment       NotificationType = "comment"
	NotificationApproval      NotificationType = "approval"
	NotificationRejection     NotificationType = "rejection"
)

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID               string                 `json:"id"`
	UserID           string                 `json:"user_id"`
	NotificationType NotificationType       `json:"notification_type"`
	Title            string                 `json:"title"`
	Message          string                 `json:"message"`
	RelatedLogID     *string                `json:"related_log_id"`
	RelatedCommentID *string                `json:"related_comment_id"`
	ExtraData        map[string]interface{} `json:"extra_data"`
	IsRead           bool                   `json:"is_read"`
	CreatedAt        time.Time              `json:"created_at"`
	ReadAt           *time.Time             `json:"read_at"`
}

// NotificationFilter narrows GET /api/notifications.
type NotificationFilter struct {
	UnreadOnly bool
	Page
}

// MarkReadRequest is the payload for POST /api/notifications/mark-read.
type MarkReadRequest struct {
	NotificationIDs []string `json:"notification_ids" binding:"required,min=1,dive,uuid"`
}

// UnreadCountResponse is returned by GET /api/notifications/count.
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// NotificationColumns is the select list matching ScanNotification.
const NotificationColumns = `n.id, n.user_id, n.notification_type::text, n.title, n.message,
	n.related_log_id, n.related_comment_id, n.extra_data, n.is_read, n.created_at, n.read_at`

// ScanNotification scans a row selected with NotificationColumns.
func ScanNotification(row pgx.Row) (*Notification, error) {
	var n Notification
	var kind string

	err := row.Scan(
		&n.ID,
		&n.UserID,
		&kind,
		&n.Title,
		&n.Message,
		&n.RelatedLogID,
		&n.RelatedCommentID,
		&n.ExtraData,
		&n.IsRead,
		&n.CreatedAt,
		&n.ReadAt,
	)
	if err != nil {
		return nil, err
	}
	n.NotificationType = NotificationType(kind)
	return &n, nil
}

// ScanNotifications scans every row and closes rows.
func ScanNotifications(rows pgx.Rows) ([]*Notification, error) {
	defer rows.Close()

	items := []*Notification{}
	for rows.Next() {
		n, err := ScanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
