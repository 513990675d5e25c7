package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/pkg/authz"
	apperrors "github.com/mentorlog/mentorlog-api/pkg/errors"
	"github.com/mentorlog/mentorlog-api/pkg/jwt"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"go.uber.org/zap"
)

const (
	// CurrentUserContextKey holds the authenticated *models.User
	CurrentUserContextKey = "current_user"

	// ClaimsContextKey holds the *jwt.AccessClaims of the bearer token
	ClaimsContextKey = "token_claims"

	msgInvalidCredentials = "Invalid authentication credentials"
)

var ErrNoCurrentUser = errors.New("no authenticated user in context")

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, *jwt.AccessClaims, error)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func abortUnauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}

// BearerAuthMiddleware requires a valid, unrevoked access token for an active user.
func BearerAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			_ = c.Error(fmt.Errorf("missing bearer token")) //nolint:errcheck
			abortUnauthorized(c, "Not authenticated")
			return
		}

		user, claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(err) //nolint:errcheck
			detail, ok := apperrors.Detail(err)
			switch {
			case errors.Is(err, apperrors.ErrUnauthorized):
				if !ok {
					detail = msgInvalidCredentials
				}
				abortUnauthorized(c, detail)
			case errors.Is(err, apperrors.ErrAccessDenied):
				if !ok {
					detail = "Forbidden"
				}
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": detail})
			default:
				logger.LogError(err, "Authentication failed", zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
			}
			return
		}

		c.Set(CurrentUserContextKey, user)
		c.Set(ClaimsContextKey, claims)
		c.Next()
	}
}

// RequireRoles must run after BearerAuthMiddleware.
func RequireRoles(roles ...authz.Role) gin.HandlerFunc {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = "'" + string(r) + "'"
	}
	detail := fmt.Sprintf("Insufficient permissions. Required roles: [%s]", strings.Join(names, ", "))

	return func(c *gin.Context) {
		user, err := GetCurrentUser(c)
		if err != nil {
			abortUnauthorized(c, "Not authenticated")
			return
		}
		if !authz.Authorize(user.Principal(), roles...) {
			logger.Warn("Role check failed",
				zap.String("user_id", user.ID),
				zap.String("role", string(user.Role)),
				zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": detail})
			return
		}
		c.Next()
	}
}

// GetCurrentUser returns the user set by BearerAuthMiddleware.
func GetCurrentUser(c *gin.Context) (*models.User, error) {
	val, exists := c.Get(CurrentUserContextKey)
	if !exists {
		return nil, ErrNoCurrentUser
	}
	user, ok := val.(*models.User)
	if !ok || user == nil {
		return nil, ErrNoCurrentUser
	}
	return user, nil
}

// GetClaims returns the token claims set by BearerAuthMiddleware, or nil.
func GetClaims(c *gin.Context) *jwt.AccessClaims {
	val, exists := c.Get(ClaimsContextKey)
	if !exists {
		return nil
	}
	claims, _ := val.(*jwt.AccessClaims)
	return claims
}
