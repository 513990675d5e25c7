package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mentorlog/mentorlog-api/internal/models"
)

// ConstantsHandler serves the fixed select lists used by log forms.
type ConstantsHandler struct {
	lists map[string][]string
}

func NewConstantsHandler() *ConstantsHandler {
	return &ConstantsHandler{lists: models.ConstantLists()}
}

// All handles GET /api/constants/all
func (h *ConstantsHandler) All(c *gin.Context) {
	c.JSON(http.StatusOK, h.lists)
}

// RegisterRoutes adds GET /{list-name} for every list, e.g. /facility-types.
func (h *ConstantsHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/all", h.All)
	for name, values := range h.lists {
		group.GET("/"+strings.ReplaceAll(name, "_", "-"), func(c *gin.Context) {
			c.JSON(http.StatusOK, values)
		})
	}
}
