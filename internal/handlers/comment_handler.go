package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/services"
)

// CommentHandler handles discussion on mentorship logs
type CommentHandler struct {
	service services.CommentServiceInterface
}

func NewCommentHandler(service services.CommentServiceInterface) *CommentHandler {
	return &CommentHandler{service: service}
}

// List handles GET /api/mentorship-logs/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	comments, err := h.service.List(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// Create handles POST /api/mentorship-logs/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.service.Create(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Update handles PUT /api/mentorship-logs/comments/:comment_id
func (h *CommentHandler) Update(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.service.Update(c.Request.Context(), actor, c.Param("comment_id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Delete handles DELETE /api/mentorship-logs/comments/:comment_id
func (h *CommentHandler) Delete(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, c.Param("comment_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
