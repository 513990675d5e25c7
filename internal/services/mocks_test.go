package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/pkg/mailer"
	"github.com/mentorlog/mentorlog-api/pkg/storage"
	"github.com/mentorlog/mentorlog-api/pkg/trigger"
	"github.com/mentorlog/mentorlog-api/pkg/workflow"
	"github.com/stretchr/testify/mock"
)

// MockUserStore is a mock implementation of repository.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) List(ctx context.Context, filter models.UserFilter) ([]*models.User, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.User), args.Int(1), args.Error(2)
}

func (m *MockUserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, user *models.User, replaceSpecializations bool) (*models.User, error) {
	args := m.Called(ctx, user, replaceSpecializations)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) SetActive(ctx context.Context, id string, active bool) (*models.User, error) {
	args := m.Called(ctx, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserStore) HasLogs(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) IsSupervisorOf(ctx context.Context, supervisorID, mentorID string) (bool, error) {
	args := m.Called(ctx, supervisorID, mentorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) ListSpecialists(ctx context.Context, areas []string, excludeUserID string) ([]*models.User, error) {
	args := m.Called(ctx, areas, excludeUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// MockFacilityStore is a mock implementation of repository.FacilityStore
type MockFacilityStore struct {
	mock.Mock
}

func (m *MockFacilityStore) GetByID(ctx context.Context, id string) (*models.Facility, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Facility), args.Error(1)
}

func (m *MockFacilityStore) List(ctx context.Context, filter models.FacilityFilter) ([]*models.Facility, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Facility), args.Int(1), args.Error(2)
}

func (m *MockFacilityStore) Create(ctx context.Context, facility *models.Facility) (*models.Facility, error) {
	args := m.Called(ctx, facility)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Facility), args.Error(1)
}

func (m *MockFacilityStore) Update(ctx context.Context, facility *models.Facility) (*models.Facility, error) {
	args := m.Called(ctx, facility)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Facility), args.Error(1)
}

func (m *MockFacilityStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockFacilityStore) HasLogs(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockLogStore is a mock implementation of repository.MentorshipLogStore
type MockLogStore struct {
	mock.Mock
}

func (m *MockLogStore) GetByID(ctx context.Context, id string) (*models.MentorshipLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorshipLog), args.Error(1)
}

func (m *MockLogStore) GetDetail(ctx context.Context, id string) (*models.MentorshipLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorshipLog), args.Error(1)
}

func (m *MockLogStore) List(ctx context.Context, filter models.MentorshipLogFilter, vis models.LogVisibility) ([]*models.MentorshipLog, int, error) {
	args := m.Called(ctx, filter, vis)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.MentorshipLog), args.Int(1), args.Error(2)
}

func (m *MockLogStore) Create(ctx context.Context, log *models.MentorshipLog, skills []models.SkillsTransferInput, followUps []models.FollowUpInput) (*models.MentorshipLog, error) {
	args := m.Called(ctx, log, skills, followUps)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorshipLog), args.Error(1)
}

func (m *MockLogStore) Update(ctx context.Context, log *models.MentorshipLog, skills []models.SkillsTransferInput, followUps []models.FollowUpInput) (*models.MentorshipLog, error) {
	args := m.Called(ctx, log, skills, followUps)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorshipLog), args.Error(1)
}

func (m *MockLogStore) UpdateState(ctx context.Context, id string, from workflow.Status, state workflow.State) error {
	return m.Called(ctx, id, from, state).Error(0)
}

func (m *MockLogStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockFollowUpStore is a mock implementation of repository.FollowUpStore
type MockFollowUpStore struct {
	mock.Mock
}

func (m *MockFollowUpStore) GetByID(ctx context.Context, id string) (*models.FollowUp, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FollowUp), args.Error(1)
}

func (m *MockFollowUpStore) List(ctx context.Context, filter models.FollowUpFilter) ([]*models.FollowUp, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.FollowUp), args.Int(1), args.Error(2)
}

func (m *MockFollowUpStore) Create(ctx context.Context, logID string, input models.FollowUpInput) (*models.FollowUp, error) {
	args := m.Called(ctx, logID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FollowUp), args.Error(1)
}

func (m *MockFollowUpStore) Update(ctx context.Context, followUp *models.FollowUp) (*models.FollowUp, error) {
	args := m.Called(ctx, followUp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FollowUp), args.Error(1)
}

func (m *MockFollowUpStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockCommentStore is a mock implementation of repository.CommentStore
type MockCommentStore struct {
	mock.Mock
}

func (m *MockCommentStore) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentStore) ListByLog(ctx context.Context, logID string) ([]*models.Comment, error) {
	args := m.Called(ctx, logID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *MockCommentStore) Create(ctx context.Context, logID, userID, text string, specialist bool) (*models.Comment, error) {
	args := m.Called(ctx, logID, userID, text, specialist)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentStore) UpdateText(ctx context.Context, id, text string) (*models.Comment, error) {
	args := m.Called(ctx, id, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockNotificationStore is a mock implementation of repository.NotificationStore
type MockNotificationStore struct {
	mock.Mock
}

func (m *MockNotificationStore) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationStore) CreateSpecialist(ctx context.Context, n *models.Notification) (bool, error) {
	args := m.Called(ctx, n)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationStore) List(ctx context.Context, userID string, filter models.NotificationFilter) ([]*models.Notification, int, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Notification), args.Int(1), args.Error(2)
}

func (m *MockNotificationStore) CountUnread(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationStore) MarkRead(ctx context.Context, userID string, ids []string) (int, error) {
	args := m.Called(ctx, userID, ids)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationStore) MarkAllRead(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationStore) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

// MockAttachmentStore is a mock implementation of repository.AttachmentStore
type MockAttachmentStore struct {
	mock.Mock
}

func (m *MockAttachmentStore) GetByID(ctx context.Context, id string) (*models.Attachment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attachment), args.Error(1)
}

func (m *MockAttachmentStore) ListByLog(ctx context.Context, logID string) ([]*models.Attachment, error) {
	args := m.Called(ctx, logID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Attachment), args.Error(1)
}

func (m *MockAttachmentStore) Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attachment), args.Error(1)
}

func (m *MockAttachmentStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockReportStore is a mock implementation of repository.ReportStore
type MockReportStore struct {
	mock.Mock
}

func (m *MockReportStore) CountLogsByStatus(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockReportStore) CountFacilities(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockReportStore) CountMentors(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockReportStore) CountFollowUpsByStatus(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockReportStore) LogReport(ctx context.Context, filter models.LogReportFilter) (*models.LogReport, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LogReport), args.Error(1)
}

func (m *MockReportStore) FollowUpReport(ctx context.Context, filter models.FollowUpReportFilter, today time.Time) (*models.FollowUpReport, error) {
	args := m.Called(ctx, filter, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FollowUpReport), args.Error(1)
}

func (m *MockReportStore) FacilityCoverage(ctx context.Context, state string) (*models.FacilityCoverageReport, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FacilityCoverageReport), args.Error(1)
}

// MockObjectStorage is a mock implementation of services.ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(ctx, key, data, contentType).Error(0)
}

func (m *MockObjectStorage) Download(ctx context.Context, key string) (*storage.Object, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Object), args.Error(1)
}

func (m *MockObjectStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockObjectStorage) PresignedURL(ctx context.Context, key, fileName string) (string, error) {
	args := m.Called(ctx, key, fileName)
	return args.String(0), args.Error(1)
}

// recordingPublisher collects events instead of posting them.
type recordingPublisher struct {
	mu     sync.Mutex
	events []trigger.Event
}

func (p *recordingPublisher) SendAsync(event trigger.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []trigger.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]trigger.Event(nil), p.events...)
}

// recordingMailer collects emails instead of sending them.
type recordingMailer struct {
	mu     sync.Mutex
	emails []mailer.Email
}

func (m *recordingMailer) Enabled() bool { return true }

func (m *recordingMailer) SendAsync(email mailer.Email) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emails = append(m.emails, email)
}

func (m *recordingMailer) Emails() []mailer.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Email(nil), m.emails...)
}
