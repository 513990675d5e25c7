package services

import (
	"context"

	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/pkg/jwt"
	"github.com/mentorlog/mentorlog-api/pkg/storage"
)

// AuthServiceInterface defines registration, login and token checks
type AuthServiceInterface interface {
	Register(ctx context.Context, req *models.UserCreateRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error)
	Authenticate(ctx context.Context, token string) (*models.User, *jwt.AccessClaims, error)
	Logout(ctx context.Context, claims *jwt.AccessClaims) error
}

// UserServiceInterface defines user administration
type UserServiceInterface interface {
	List(ctx context.Context, filter models.UserFilter) (models.Paginated[*models.User], error)
	Get(ctx context.Context, actor *models.User, id string) (*models.User, error)
	Create(ctx context.Context, req *models.UserCreateRequest) (*models.User, error)
	Update(ctx context.Context, actor *models.User, id string, req *models.UserUpdateRequest) (*models.User, error)
	SetActive(ctx context.Context, id string, active bool) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// FacilityServiceInterface defines facility management
type FacilityServiceInterface interface {
	List(ctx context.Context, filter models.FacilityFilter) (models.Paginated[*models.Facility], error)
	Get(ctx context.Context, id string) (*models.Facility, error)
	Create(ctx context.Context, req *models.FacilityRequest) (*models.Facility, error)
	Update(ctx context.Context, id string, req *models.FacilityUpdateRequest) (*models.Facility, error)
	Delete(ctx context.Context, id string) error
}

// LogServiceInterface defines mentorship log CRUD and the review workflow
type LogServiceInterface interface {
	List(ctx context.Context, actor *models.User, filter models.MentorshipLogFilter) (models.Paginated[*models.MentorshipLog], error)
	Get(ctx context.Context, actor *models.User, id string) (*models.MentorshipLog, error)
	Create(ctx context.Context, actor *models.User, req *models.MentorshipLogCreateRequest) (*models.MentorshipLog, error)
	Update(ctx context.Context, actor *models.User, id string, req *models.MentorshipLogUpdateRequest) (*models.MentorshipLog, error)
	Submit(ctx context.Context, actor *models.User, id string) (*models.MentorshipLog, error)
	Approve(ctx context.Context, actor *models.User, id string) (*models.MentorshipLog, error)
	ReturnToDraft(ctx context.Context, actor *models.User, id string) (*models.MentorshipLog, error)
	Reject(ctx context.Context, actor *models.User, id, reason string) (*models.MentorshipLog, error)
	Complete(ctx context.Context, actor *models.User, id string) (*models.MentorshipLog, error)
	Delete(ctx context.Context, actor *models.User, id string) error
}

type FollowUpServiceInterface interface {
	List(ctx context.Context, actor *models.User, filter models.FollowUpFilter) (models.Paginated[*models.FollowUp], error)
	Get(ctx context.Context, actor *models.User, id string) (*models.FollowUp, error)
	Create(ctx context.Context, actor *models.User, req *models.FollowUpCreateRequest) (*models.FollowUp, error)
	Update(ctx context.Context, actor *models.User, id string, req *models.FollowUpUpdateRequest) (*models.FollowUp, error)
	SetStatus(ctx context.Context, actor *models.User, id string, status models.FollowUpStatus) (*models.FollowUp, error)
	Delete(ctx context.Context, actor *models.User, id string) error
}

type CommentServiceInterface interface {
	List(ctx context.Context, actor *models.User, logID string) ([]*models.Comment, error)
	Create(ctx context.Context, actor *models.User, logID string, req *models.CommentRequest) (*models.Comment, error)
	Update(ctx context.Context, actor *models.User, id string, req *models.CommentRequest) (*models.Comment, error)
	Delete(ctx context.Context, actor *models.User, id string) error
}

type NotificationServiceInterface interface {
	List(ctx context.Context, userID string, filter models.NotificationFilter) (models.Paginated[*models.Notification], error)
	UnreadCount(ctx context.Context, userID string) (*models.UnreadCountResponse, error)
	MarkRead(ctx context.Context, userID string, ids []string) (*models.MessageResponse, error)
	MarkAllRead(ctx context.Context, userID string) (*models.MessageResponse, error)
	Delete(ctx context.Context, userID, id string) error
}

// AttachmentServiceInterface defines attachment upload and retrieval
type AttachmentServiceInterface interface {
	Upload(ctx context.Context, actor *models.User, logID string, files []models.UploadFile) ([]*models.Attachment, error)
	List(ctx context.Context, actor *models.User, logID string) ([]*models.Attachment, error)
	Download(ctx context.Context, actor *models.User, id string) (*models.Attachment, *storage.Object, error)
	URL(ctx context.Context, actor *models.User, id string) (*models.AttachmentURLResponse, error)
	Delete(ctx context.Context, actor *models.User, id string) error
}

type ReportServiceInterface interface {
	Summary(ctx context.Context) (*models.SummaryReport, error)
	MentorshipLogs(ctx context.Context, filter models.LogReportFilter) (*models.LogReport, error)
	FollowUps(ctx context.Context, filter models.FollowUpReportFilter) (*models.FollowUpReport, error)
	FacilityCoverage(ctx context.Context, state string) (*models.FacilityCoverageReport, error)
}

// Ensure services implement their interfaces
var _ AuthServiceInterface = (*AuthService)(nil)
var _ UserServiceInterface = (*UserService)(nil)
var _ FacilityServiceInterface = (*FacilityService)(nil)
var _ LogServiceInterface = (*LogService)(nil)
var _ FollowUpServiceInterface = (*FollowUpService)(nil)
var _ CommentServiceInterface = (*CommentService)(nil)
var _ NotificationServiceInterface = (*NotificationService)(nil)
var _ AttachmentServiceInterface = (*AttachmentService)(nil)
var _ ReportServiceInterface = (*ReportService)(nil)
var _ ObjectStorage = (*storage.Client)(nil)
