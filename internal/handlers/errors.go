package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mentorlog/mentorlog-api/internal/middleware"
	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/services"
	apperrors "github.com/mentorlog/mentorlog-api/pkg/errors"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"go.uber.org/zap"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so errcheck is suppressed.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends a {detail} JSON response and attaches the error to the gin context.
func respondError(c *gin.Context, status int, detail string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"detail": detail})
}

// respondServiceError maps a service error onto its HTTP status. Errors
// without an attached detail are treated as internal.
func respondServiceError(c *gin.Context, err error) {
	detail, hasDetail := apperrors.Detail(err)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrAccessDenied):
		status = http.StatusForbidden
	case errors.Is(err, apperrors.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
		c.Header("WWW-Authenticate", "Bearer")
	case errors.Is(err, services.ErrStorageDisabled):
		status = http.StatusServiceUnavailable
		detail, hasDetail = "File storage is not configured", true
	}

	if status == http.StatusInternalServerError || !hasDetail {
		logger.LogError(err, "Request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()))
		respondError(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	respondError(c, status, detail, err)
}

// currentUser returns the authenticated user, writing a 401 when it is missing.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		c.Header("WWW-Authenticate", "Bearer")
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return nil, false
	}
	return user, true
}
