package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func reportRouter(svc *MockReportService) *gin.Engine {
	h := NewReportHandler(svc)
	router := gin.New()
	g := router.Group("/api/reports")
	g.GET("/summary", h.Summary)
	g.GET("/mentorship-logs", h.MentorshipLogs)
	g.GET("/follow-ups", h.FollowUps)
	g.GET("/facility-coverage", h.FacilityCoverage)
	return router
}

func TestReportHandler_MentorshipLogs_Filters(t *testing.T) {
	svc := new(MockReportService)
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	svc.On("MentorshipLogs", mock.Anything, models.LogReportFilter{StartDate: &start, Status: "approved"}).
		Return(&models.LogReport{TotalCount: 4}, nil)

	w := serve(reportRouter(svc), http.MethodGet, "/api/reports/mentorship-logs?start_date=2026-02-01&status=approved", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_count":4`)
	svc.AssertExpectations(t)
}

func TestReportHandler_FollowUpsAndCoverage(t *testing.T) {
	svc := new(MockReportService)
	svc.On("FollowUps", mock.Anything, models.FollowUpReportFilter{Priority: "High"}).
		Return(&models.FollowUpReport{TotalCount: 2, OverdueCount: 1}, nil)
	svc.On("FacilityCoverage", mock.Anything, "Lagos").
		Return(&models.FacilityCoverageReport{TotalFacilities: 3, VisitedFacilities: 1, UnvisitedFacilities: 2}, nil)
	router := reportRouter(svc)

	w := serve(router, http.MethodGet, "/api/reports/follow-ups?priority=High", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"overdue_count":1`)

	w = serve(router, http.MethodGet, "/api/reports/facility-coverage?state=Lagos", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unvisited_facilities":2`)
}

func TestReportHandler_Summary(t *testing.T) {
	svc := new(MockReportService)
	svc.On("Summary", mock.Anything).Return(&models.SummaryReport{TotalLogs: 9}, nil)

	w := serve(reportRouter(svc), http.MethodGet, "/api/reports/summary", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_logs":9`)
}
