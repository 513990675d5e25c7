package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/services"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"go.uber.org/zap"
)

// MentorshipLogHandler handles mentorship log CRUD and review actions
type MentorshipLogHandler struct {
	service services.LogServiceInterface
}

func NewMentorshipLogHandler(service services.LogServiceInterface) *MentorshipLogHandler {
	return &MentorshipLogHandler{service: service}
}

// List handles GET /api/mentorship-logs
func (h *MentorshipLogHandler) List(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}

	filter := models.MentorshipLogFilter{
		FacilityID: strings.TrimSpace(c.Query("facility_id")),
		MentorID:   strings.TrimSpace(c.Query("mentor_id")),
		Status:     strings.TrimSpace(c.Query("status")),
		Page:       page,
	}

	var qerr *queryError
	if filter.VisitDateFrom, qerr = queryDate(c, "visit_date_from"); qerr != nil {
		respondQueryError(c, qerr)
		return
	}
	if filter.VisitDateTo, qerr = queryDate(c, "visit_date_to"); qerr != nil {
		respondQueryError(c, qerr)
		return
	}

	logs, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// Get handles GET /api/mentorship-logs/:id
func (h *MentorshipLogHandler) Get(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	log, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

// Create handles POST /api/mentorship-logs
func (h *MentorshipLogHandler) Create(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.MentorshipLogCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	log, err := h.service.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	logger.Info("Mentorship log created",
		zap.String("log_id", log.ID),
		zap.String("mentor_id", actor.ID))
	c.JSON(http.StatusCreated, log)
}

// Update handles PUT /api/mentorship-logs/:id
func (h *MentorshipLogHandler) Update(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.MentorshipLogUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	log, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

type transitionFunc func(ctx context.Context, actor *models.User, id string) (*models.MentorshipLog, error)

// transition runs one workflow action on the log named by :id.
func (h *MentorshipLogHandler) transition(c *gin.Context, action string, fn transitionFunc) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	log, err := fn(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	logger.Info("Mentorship log transitioned",
		zap.String("log_id", log.ID),
		zap.String("action", action),
		zap.String("status", string(log.Status)),
		zap.String("actor_id", actor.ID))
	c.JSON(http.StatusOK, log)
}

// Submit handles POST /api/mentorship-logs/:id/submit
func (h *MentorshipLogHandler) Submit(c *gin.Context) {
	h.transition(c, "submit", h.service.Submit)
}

// Approve handles POST /api/mentorship-logs/:id/approve
func (h *MentorshipLogHandler) Approve(c *gin.Context) {
	h.transition(c, "approve", h.service.Approve)
}

// ReturnToDraft handles POST /api/mentorship-logs/:id/return-to-draft
func (h *MentorshipLogHandler) ReturnToDraft(c *gin.Context) {
	h.transition(c, "return", h.service.ReturnToDraft)
}

// Reject handles POST /api/mentorship-logs/:id/reject?reason=
func (h *MentorshipLogHandler) Reject(c *gin.Context) {
	reason := c.Query("reason")
	h.transition(c, "reject", func(ctx context.Context, actor *models.User, id string) (*models.MentorshipLog, error) {
		return h.service.Reject(ctx, actor, id, reason)
	})
}

// Complete handles POST /api/mentorship-logs/:id/complete
func (h *MentorshipLogHandler) Complete(c *gin.Context) {
	h.transition(c, "complete", h.service.Complete)
}

// Delete handles DELETE /api/mentorship-logs/:id
func (h *MentorshipLogHandler) Delete(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
