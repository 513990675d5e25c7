package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/repository"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"github.com/mentorlog/mentorlog-api/pkg/mailer"
	"github.com/mentorlog/mentorlog-api/pkg/metrics"
	"github.com/mentorlog/mentorlog-api/pkg/trigger"
	"go.uber.org/zap"
)

// EventPublisher posts workflow events to the events webhook.
type EventPublisher interface {
	SendAsync(event trigger.Event)
}

// MailSender delivers notification emails.
type MailSender interface {
	Enabled() bool
	SendAsync(email mailer.Email)
}

// Notifier writes in-app notifications and mirrors approval and rejection
// notices to email. Notification failures never fail the triggering action.
type Notifier struct {
	notifications repository.NotificationStore
	mail          MailSender
}

// NewNotifier creates a Notifier. mail may be nil.
func NewNotifier(notifications repository.NotificationStore, mail MailSender) *Notifier {
	return &Notifier{notifications: notifications, mail: mail}
}

func (n *Notifier) create(ctx context.Context, note *models.Notification) *models.Notification {
	created, err := n.notifications.Create(ctx, note)
	if err != nil {
		logger.LogError(err, "Failed to create notification",
			zap.String("user_id", note.UserID),
			zap.String("type", string(note.NotificationType)))
		return nil
	}
	metrics.NotificationsCreated.WithLabelValues(string(note.NotificationType)).Inc()
	return created
}

func (n *Notifier) email(to *models.User, subject, body string) {
	if n.mail == nil || !n.mail.Enabled() || to == nil || to.Email == "" {
		return
	}
	n.mail.SendAsync(mailer.Email{To: []string{to.Email}, Subject: subject, Body: body})
}

func facilityLabel(log *models.MentorshipLog) string {
	if name := log.FacilityName(); name != "" {
		return name
	}
	return "a facility"
}

func visitDate(log *models.MentorshipLog) interface{} {
	if !log.VisitDate.Valid {
		return nil
	}
	return log.VisitDate.Time.Format("2006-01-02")
}

// Approved tells the mentor their log was approved.
func (n *Notifier) Approved(ctx context.Context, log *models.MentorshipLog, approver, mentor *models.User) {
	const title = "Log Approved"
	message := fmt.Sprintf("Your mentorship log for %s has been approved by %s", facilityLabel(log), approver.Name)
	logID := log.ID

	n.create(ctx, &models.Notification{
		UserID:           log.MentorID,
		NotificationType: models.NotificationApproval,
		Title:            title,
		Message:          message,
		RelatedLogID:     &logID,
		ExtraData: map[string]interface{}{
			"approver_name": approver.Name,
			"approver_role": string(approver.Role),
			"facility_name": log.FacilityName(),
			"visit_date":    visitDate(log),
		},
	})
	n.email(mentor, title, message)
}

// Rejected tells the mentor their log was returned with a reason.
func (n *Notifier) Rejected(ctx context.Context, log *models.MentorshipLog, rejector, mentor *models.User, reason string) {
	const title = "Log Returned for Revision"
	message := fmt.Sprintf("Your mentorship log for %s has been returned by %s. Reason: %s", facilityLabel(log), rejector.Name, reason)
	logID := log.ID

	n.create(ctx, &models.Notification{
		UserID:           log.MentorID,
		NotificationType: models.NotificationRejection,
		Title:            title,
		Message:          message,
		RelatedLogID:     &logID,
		ExtraData: map[string]interface{}{
			"rejector_name":    rejector.Name,
			"rejector_role":    string(rejector.Role),
			"facility_name":    log.FacilityName(),
			"visit_date":       visitDate(log),
			"rejection_reason": reason,
		},
	})
	n.email(mentor, title, message)
}

// Commented tells the log owner about a new comment.
func (n *Notifier) Commented(ctx context.Context, log *models.MentorshipLog, author *models.User, comment *models.Comment) {
	logID, commentID := log.ID, comment.ID
	n.create(ctx, &models.Notification{
		UserID:           log.MentorID,
		NotificationType: models.NotificationComment,
		Title:            "New Comment",
		Message:          fmt.Sprintf("%s commented on your mentorship log for %s", author.Name, facilityLabel(log)),
		RelatedLogID:     &logID,
		RelatedCommentID: &commentID,
		ExtraData: map[string]interface{}{
			"commenter_name":        author.Name,
			"commenter_role":        string(author.Role),
			"is_specialist_comment": comment.IsSpecialistComment,
		},
	})
}

// SpecialistsSubmitted notifies each matching specialist once per log and
// returns how many new notifications were written.
func (n *Notifier) SpecialistsSubmitted(ctx context.Context, log *models.MentorshipLog, specialists []*models.User) int {
	created := 0
	logID := log.ID
	for _, sp := range specialists {
		areas := matchingAreas(sp.Specializations, log.ThematicAreas)
		ok, err := n.notifications.CreateSpecialist(ctx, &models.Notification{
			UserID:           sp.ID,
			NotificationType: models.NotificationSpecialistLog,
			Title:            "New Log in Your Specialty",
			Message: fmt.Sprintf("A mentorship log for %s covering %s was submitted",
				facilityLabel(log), strings.Join(areas, ", ")),
			RelatedLogID: &logID,
			ExtraData: map[string]interface{}{
				"facility_name":  log.FacilityName(),
				"visit_date":     visitDate(log),
				"thematic_areas": areas,
			},
		})
		if err != nil {
			logger.LogError(err, "Failed to notify specialist",
				zap.String("user_id", sp.ID),
				zap.String("log_id", log.ID))
			continue
		}
		if ok {
			created++
			metrics.NotificationsCreated.WithLabelValues(string(models.NotificationSpecialistLog)).Inc()
		}
	}
	return created
}

func matchingAreas(specializations, areas []string) []string {
	out := []string{}
	for _, a := range areas {
		for _, s := range specializations {
			if a == s {
				out = append(out, a)
				break
			}
		}
	}
	return out
}
