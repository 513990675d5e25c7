package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/pkg/authz"
	apperrors "github.com/mentorlog/mentorlog-api/pkg/errors"
	"github.com/mentorlog/mentorlog-api/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func logRouter(svc *MockLogService, user *models.User) *gin.Engine {
	h := NewMentorshipLogHandler(svc)
	router := gin.New()
	logs := router.Group("/api/mentorship-logs", asUser(user))
	logs.GET("", h.List)
	logs.POST("", h.Create)
	logs.GET("/:id", h.Get)
	logs.PUT("/:id", h.Update)
	logs.POST("/:id/submit", h.Submit)
	logs.POST("/:id/approve", h.Approve)
	logs.POST("/:id/reject", h.Reject)
	logs.POST("/:id/return-to-draft", h.ReturnToDraft)
	logs.POST("/:id/complete", h.Complete)
	logs.DELETE("/:id", h.Delete)
	return router
}

func TestMentorshipLogHandler_List_ParsesFilters(t *testing.T) {
	svc := new(MockLogService)
	user := testUser("m1", authz.RoleMentor)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	expected := models.MentorshipLogFilter{
		FacilityID:    "f1",
		Status:        "submitted",
		VisitDateFrom: &from,
		VisitDateTo:   &to,
		Page:          models.Page{Skip: 5, Limit: 10},
	}
	svc.On("List", mock.Anything, user, expected).
		Return(models.NewPaginated([]*models.MentorshipLog{{ID: "l1"}}, 1, expected.Page), nil)

	w := serve(logRouter(svc, user), http.MethodGet,
		"/api/mentorship-logs?facility_id=f1&status=submitted&visit_date_from=2026-01-01&visit_date_to=2026-01-31&skip=5&limit=10", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
	assert.Contains(t, w.Body.String(), `"skip":5`)
	svc.AssertExpectations(t)
}

func TestMentorshipLogHandler_List_BadDate(t *testing.T) {
	svc := new(MockLogService)

	w := serve(logRouter(svc, testUser("m1", authz.RoleMentor)), http.MethodGet,
		"/api/mentorship-logs?visit_date_from=01/02/2026", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"visit_date_from"`)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestMentorshipLogHandler_Create(t *testing.T) {
	svc := new(MockLogService)
	user := testUser("m1", authz.RoleMentor)
	svc.On("Create", mock.Anything, user, mock.MatchedBy(func(req *models.MentorshipLogCreateRequest) bool {
		return req.FacilityID == "6f2a1c3e-8d4b-4f1a-9c2e-7b5d3a1f0e9c" && len(req.FollowUps) == 1
	})).Return(&models.MentorshipLog{ID: "l1", Status: workflow.StatusDraft}, nil)

	body := `{"facility_id":"6f2a1c3e-8d4b-4f1a-9c2e-7b5d3a1f0e9c","visit_date":"2026-03-01",
		"follow_ups":[{"action_item":"Restock test kits","priority":"High"}]}`
	w := serve(logRouter(svc, user), http.MethodPost, "/api/mentorship-logs", jsonBody(body))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"draft"`)
	svc.AssertExpectations(t)
}

func TestMentorshipLogHandler_Create_ValidationError(t *testing.T) {
	svc := new(MockLogService)

	w := serve(logRouter(svc, testUser("m1", authz.RoleMentor)), http.MethodPost,
		"/api/mentorship-logs", jsonBody(`{"facility_id":"not-a-uuid"}`))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"loc":["body","facility_id"]`)
}

func TestMentorshipLogHandler_Transitions(t *testing.T) {
	user := testUser("s1", authz.RoleSupervisor)

	tests := []struct {
		path   string
		method string
		status workflow.Status
	}{
		{"/api/mentorship-logs/l1/submit", "Submit", workflow.StatusSubmitted},
		{"/api/mentorship-logs/l1/approve", "Approve", workflow.StatusApproved},
		{"/api/mentorship-logs/l1/return-to-draft", "ReturnToDraft", workflow.StatusDraft},
		{"/api/mentorship-logs/l1/complete", "Complete", workflow.StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			svc := new(MockLogService)
			svc.On(tt.method, mock.Anything, user, "l1").Return(&models.MentorshipLog{ID: "l1", Status: tt.status}, nil)

			w := serve(logRouter(svc, user), http.MethodPost, tt.path, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `"status":"`+string(tt.status)+`"`)
			svc.AssertExpectations(t)
		})
	}
}

func TestMentorshipLogHandler_Reject_PassesReason(t *testing.T) {
	svc := new(MockLogService)
	user := testUser("s1", authz.RoleSupervisor)
	svc.On("Reject", mock.Anything, user, "l1", "Missing signatures").
		Return(&models.MentorshipLog{ID: "l1", Status: workflow.StatusDraft}, nil)

	w := serve(logRouter(svc, user), http.MethodPost, "/api/mentorship-logs/l1/reject?reason=Missing%20signatures", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestMentorshipLogHandler_Reject_BlankReason(t *testing.T) {
	svc := new(MockLogService)
	user := testUser("s1", authz.RoleSupervisor)
	svc.On("Reject", mock.Anything, user, "l1", "").
		Return(nil, apperrors.Wrap(apperrors.ErrInvalidInput, "Rejection reason is required"))

	w := serve(logRouter(svc, user), http.MethodPost, "/api/mentorship-logs/l1/reject", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"Rejection reason is required"}`, w.Body.String())
}

func TestMentorshipLogHandler_Submit_Conflict(t *testing.T) {
	svc := new(MockLogService)
	user := testUser("m1", authz.RoleMentor)
	svc.On("Submit", mock.Anything, user, "l1").
		Return(nil, apperrors.Wrap(apperrors.ErrConflict, "The log was changed by another request. Reload and try again."))

	w := serve(logRouter(svc, user), http.MethodPost, "/api/mentorship-logs/l1/submit", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMentorshipLogHandler_Get_Forbidden(t *testing.T) {
	svc := new(MockLogService)
	user := testUser("m2", authz.RoleMentor)
	svc.On("Get", mock.Anything, user, "l1").
		Return(nil, apperrors.Wrap(apperrors.ErrAccessDenied, "You don't have permission to view this log"))

	w := serve(logRouter(svc, user), http.MethodGet, "/api/mentorship-logs/l1", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"detail":"You don't have permission to view this log"}`, w.Body.String())
}

func TestMentorshipLogHandler_Delete(t *testing.T) {
	svc := new(MockLogService)
	user := testUser("m1", authz.RoleMentor)
	svc.On("Delete", mock.Anything, user, "l1").Return(nil)

	w := serve(logRouter(svc, user), http.MethodDelete, "/api/mentorship-logs/l1", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}
