package handlers

import (
	"context"

	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/pkg/jwt"
	"github.com/mentorlog/mentorlog-api/pkg/storage"
	"github.com/stretchr/testify/mock"
)

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Register(ctx context.Context, req *models.UserCreateRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	args := m.Called(ctx, req)
	t, _ := args.Get(0).(*models.TokenResponse)
	return t, args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*models.User, *jwt.AccessClaims, error) {
	args := m.Called(ctx, token)
	u, _ := args.Get(0).(*models.User)
	cl, _ := args.Get(1).(*jwt.AccessClaims)
	return u, cl, args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *jwt.AccessClaims) error {
	return m.Called(ctx, claims).Error(0)
}

type MockLogService struct{ mock.Mock }

func (m *MockLogService) result(args mock.Arguments) (*models.MentorshipLog, error) {
	l, _ := args.Get(0).(*models.MentorshipLog)
	return l, args.Error(1)
}

func (m *MockLogService) List(ctx context.Context, actor *models.User, filter models.MentorshipLogFilter) (models.Paginated[*models.MentorshipLog], error) {
	args := m.Called(ctx, actor, filter)
	return args.Get(0).(models.Paginated[*models.MentorshipLog]), args.Error(1)
}

func (m *MockLogService) Get(ctx context.Context, actor *models.User, id string) (*models.MentorshipLog, error) {
	return m.result(m.Called(ctx, actor, id))
}

func (m *MockLogService) Create(ctx context.Context, actor *models.User, req *models.MentorshipLogCreateRequest) (*models.MentorshipLog, error) {
	return m.result(m.Called(ctx, actor, req))
}

func (m *MockLogService) Update(ctx context.Context, actor *models.User, id string, req *models.MentorshipLogUpdateRequest) (*models.MentorshipLog, error) {
	return m.result(m.Called(ctx, actor, id, req))
}

func (m *MockLogService) Submit(ctx context.Context, actor *models.User, id string) (*models.MentorshipLog, error) {
	return m.result(m.Called(ctx, actor, id))
}

func (m *MockLogService) Approve(ctx context.Context, actor *models.User, id string) (*models.MentorshipLog, error) {
	return m.result(m.Called(ctx, actor, id))
}

func (m *MockLogService) ReturnToDraft(ctx context.Context, actor *models.User, id string) (*models.MentorshipLog, error) {
	return m.result(m.Called(ctx, actor, id))
}

func (m *MockLogService) Reject(ctx context.Context, actor *models.User, id, reason string) (*models.MentorshipLog, error) {
	return m.result(m.Called(ctx, actor, id, reason))
}

func (m *MockLogService) Complete(ctx context.Context, actor *models.User, id string) (*models.MentorshipLog, error) {
	return m.result(m.Called(ctx, actor, id))
}

func (m *MockLogService) Delete(ctx context.Context, actor *models.User, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

type MockAttachmentService struct{ mock.Mock }

func (m *MockAttachmentService) Upload(ctx context.Context, actor *models.User, logID string, files []models.UploadFile) ([]*models.Attachment, error) {
	args := m.Called(ctx, actor, logID, files)
	a, _ := args.Get(0).([]*models.Attachment)
	return a, args.Error(1)
}

func (m *MockAttachmentService) List(ctx context.Context, actor *models.User, logID string) ([]*models.Attachment, error) {
	args := m.Called(ctx, actor, logID)
	a, _ := args.Get(0).([]*models.Attachment)
	return a, args.Error(1)
}

func (m *MockAttachmentService) Download(ctx context.Context, actor *models.User, id string) (*models.Attachment, *storage.Object, error) {
	args := m.Called(ctx, actor, id)
	a, _ := args.Get(0).(*models.Attachment)
	o, _ := args.Get(1).(*storage.Object)
	return a, o, args.Error(2)
}

func (m *MockAttachmentService) URL(ctx context.Context, actor *models.User, id string) (*models.AttachmentURLResponse, error) {
	args := m.Called(ctx, actor, id)
	r, _ := args.Get(0).(*models.AttachmentURLResponse)
	return r, args.Error(1)
}

func (m *MockAttachmentService) Delete(ctx context.Context, actor *models.User, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

type MockNotificationService struct{ mock.Mock }

func (m *MockNotificationService) List(ctx context.Context, userID string, filter models.NotificationFilter) (models.Paginated[*models.Notification], error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).(models.Paginated[*models.Notification]), args.Error(1)
}

func (m *MockNotificationService) UnreadCount(ctx context.Context, userID string) (*models.UnreadCountResponse, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).(*models.UnreadCountResponse)
	return r, args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, userID string, ids []string) (*models.MessageResponse, error) {
	args := m.Called(ctx, userID, ids)
	r, _ := args.Get(0).(*models.MessageResponse)
	return r, args.Error(1)
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context, userID string) (*models.MessageResponse, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).(*models.MessageResponse)
	return r, args.Error(1)
}

func (m *MockNotificationService) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

type MockReportService struct{ mock.Mock }

func (m *MockReportService) Summary(ctx context.Context) (*models.SummaryReport, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*models.SummaryReport)
	return r, args.Error(1)
}

func (m *MockReportService) MentorshipLogs(ctx context.Context, filter models.LogReportFilter) (*models.LogReport, error) {
	args := m.Called(ctx, filter)
	r, _ := args.Get(0).(*models.LogReport)
	return r, args.Error(1)
}

func (m *MockReportService) FollowUps(ctx context.Context, filter models.FollowUpReportFilter) (*models.FollowUpReport, error) {
	args := m.Called(ctx, filter)
	r, _ := args.Get(0).(*models.FollowUpReport)
	return r, args.Error(1)
}

func (m *MockReportService) FacilityCoverage(ctx context.Context, state string) (*models.FacilityCoverageReport, error) {
	args := m.Called(ctx, state)
	r, _ := args.Get(0).(*models.FacilityCoverageReport)
	return r, args.Error(1)
}
