package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/services"
)

// FacilityHandler handles health facility endpoints
type FacilityHandler struct {
	service services.FacilityServiceInterface
}

func NewFacilityHandler(service services.FacilityServiceInterface) *FacilityHandler {
	return &FacilityHandler{service: service}
}

// List handles GET /api/facilities
func (h *FacilityHandler) List(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}

	filter := models.FacilityFilter{
		State:        strings.TrimSpace(c.Query("state")),
		LGA:          strings.TrimSpace(c.Query("lga")),
		FacilityType: strings.TrimSpace(c.Query("facility_type")),
		Search:       strings.TrimSpace(c.Query("search")),
		Page:         page,
	}

	facilities, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, facilities)
}

// Get handles GET /api/facilities/:id
func (h *FacilityHandler) Get(c *gin.Context) {
	facility, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, facility)
}

// Create handles POST /api/facilities
func (h *FacilityHandler) Create(c *gin.Context) {
	var req models.FacilityRequest
	if !bindJSON(c, &req) {
		return
	}

	facility, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, facility)
}

// Update handles PUT /api/facilities/:id
func (h *FacilityHandler) Update(c *gin.Context) {
	var req models.FacilityUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	facility, err := h.service.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, facility)
}

// Delete handles DELETE /api/facilities/:id
func (h *FacilityHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
