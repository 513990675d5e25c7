package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/services"
)

// FollowUpHandler handles follow-up action items
type FollowUpHandler struct {
	service services.FollowUpServiceInterface
}

func NewFollowUpHandler(service services.FollowUpServiceInterface) *FollowUpHandler {
	return &FollowUpHandler{service: service}
}

// List handles GET /api/follow-ups
func (h *FollowUpHandler) List(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}

	filter := models.FollowUpFilter{
		Status:          strings.TrimSpace(c.Query("status")),
		MentorshipLogID: strings.TrimSpace(c.Query("mentorship_log_id")),
		AssignedTo:      strings.TrimSpace(c.Query("assigned_to")),
		Priority:        strings.TrimSpace(c.Query("priority")),
		Page:            page,
	}

	followUps, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, followUps)
}

// Get handles GET /api/follow-ups/:id
func (h *FollowUpHandler) Get(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	followUp, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, followUp)
}

// Create handles POST /api/follow-ups
func (h *FollowUpHandler) Create(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.FollowUpCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	followUp, err := h.service.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, followUp)
}

// Update handles PUT /api/follow-ups/:id
func (h *FollowUpHandler) Update(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.FollowUpUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	followUp, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, followUp)
}

// MarkInProgress handles PUT /api/follow-ups/:id/in-progress
func (h *FollowUpHandler) MarkInProgress(c *gin.Context) {
	h.setStatus(c, models.FollowUpInProgress)
}

// MarkComplete handles PUT /api/follow-ups/:id/complete
func (h *FollowUpHandler) MarkComplete(c *gin.Context) {
	h.setStatus(c, models.FollowUpCompleted)
}

func (h *FollowUpHandler) setStatus(c *gin.Context, status models.FollowUpStatus) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	followUp, err := h.service.SetStatus(c.Request.Context(), actor, c.Param("id"), status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, followUp)
}

// Delete handles DELETE /api/follow-ups/:id
func (h *FollowUpHandler) Delete(c *gin.Context) {
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
