package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/services"
)

// ReportHandler serves aggregate reports for admins and supervisors
type ReportHandler struct {
	service services.ReportServiceInterface
}

func NewReportHandler(service services.ReportServiceInterface) *ReportHandler {
	return &ReportHandler{service: service}
}

// Summary handles GET /api/reports/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	report, err := h.service.Summary(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// MentorshipLogs handles GET /api/reports/mentorship-logs
func (h *ReportHandler) MentorshipLogs(c *gin.Context) {
	filter := models.LogReportFilter{
		MentorID:   strings.TrimSpace(c.Query("mentor_id")),
		FacilityID: strings.TrimSpace(c.Query("facility_id")),
		Status:     strings.TrimSpace(c.Query("status")),
	}

	var qerr *queryError
	if filter.StartDate, qerr = queryDate(c, "start_date"); qerr != nil {
		respondQueryError(c, qerr)
		return
	}
	if filter.EndDate, qerr = queryDate(c, "end_date"); qerr != nil {
		respondQueryError(c, qerr)
		return
	}

	report, err := h.service.MentorshipLogs(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// FollowUps handles GET /api/reports/follow-ups
func (h *ReportHandler) FollowUps(c *gin.Context) {
	filter := models.FollowUpReportFilter{
		Status:   strings.TrimSpace(c.Query("status")),
		Priority: strings.TrimSpace(c.Query("priority")),
	}

	report, err := h.service.FollowUps(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// FacilityCoverage handles GET /api/reports/facility-coverage
func (h *ReportHandler) FacilityCoverage(c *gin.Context) {
	report, err := h.service.FacilityCoverage(c.Request.Context(), strings.TrimSpace(c.Query("state")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
