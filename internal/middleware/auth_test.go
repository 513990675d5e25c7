package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/pkg/authz"
	apperrors "github.com/mentorlog/mentorlog-api/pkg/errors"
	"github.com/mentorlog/mentorlog-api/pkg/jwt"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = logger.Initialize(logger.Config{Level: "error", Environment: "test"})
}

type fakeAuthenticator struct {
	users map[string]*models.User
	err   error
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*models.User, *jwt.AccessClaims, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	user, ok := f.users[token]
	if !ok {
		return nil, nil, apperrors.Wrap(apperrors.ErrUnauthorized, msgInvalidCredentials)
	}
	claims := &jwt.AccessClaims{Role: string(user.Role)}
	claims.Subject = user.ID
	return user, claims, nil
}

func newAuthRouter(auth Authenticator, roles ...authz.Role) *gin.Engine {
	router := gin.New()
	group := router.Group("/", BearerAuthMiddleware(auth))
	if len(roles) > 0 {
		group.Use(RequireRoles(roles...))
	}
	group.GET("/test", func(c *gin.Context) {
		user, err := GetCurrentUser(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		claims := GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"id": user.ID, "sub": claims.Subject})
	})
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	router.ServeHTTP(w, req)
	return w
}

func testAuthenticator() *fakeAuthenticator {
	return &fakeAuthenticator{users: map[string]*models.User{
		"mentor-token": {ID: "m1", Role: authz.RoleMentor, IsActive: true},
		"admin-token":  {ID: "a1", Role: authz.RoleAdmin, IsActive: true},
	}}
}

func TestBearerAuthMiddleware_ValidToken(t *testing.T) {
	w := doRequest(newAuthRouter(testAuthenticator()), "Bearer mentor-token")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"m1","sub":"m1"}`, w.Body.String())
}

func TestBearerAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	w := doRequest(newAuthRouter(testAuthenticator()), "bearer mentor-token")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBearerAuthMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
		detail string
	}{
		{name: "missing header", header: "", detail: "Not authenticated"},
		{name: "wrong scheme", header: "Basic abc", detail: "Not authenticated"},
		{name: "empty token", header: "Bearer ", detail: "Not authenticated"},
		{name: "unknown token", header: "Bearer nope", detail: msgInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(newAuthRouter(testAuthenticator()), tt.header)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			assert.JSONEq(t, `{"detail":"`+tt.detail+`"}`, w.Body.String())
		})
	}
}

func TestBearerAuthMiddleware_InactiveUser(t *testing.T) {
	auth := &fakeAuthenticator{err: apperrors.Wrap(apperrors.ErrAccessDenied, "Inactive user")}

	w := doRequest(newAuthRouter(auth), "Bearer anything")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"detail":"Inactive user"}`, w.Body.String())
}

func TestBearerAuthMiddleware_InternalError(t *testing.T) {
	auth := &fakeAuthenticator{err: errors.New("db down")}

	w := doRequest(newAuthRouter(auth), "Bearer anything")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestRequireRoles(t *testing.T) {
	router := newAuthRouter(testAuthenticator(), authz.RoleAdmin, authz.RoleSupervisor)

	w := doRequest(router, "Bearer admin-token")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "Bearer mentor-token")
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"detail":"Insufficient permissions. Required roles: ['admin', 'supervisor']"}`, w.Body.String())
}

func TestRequireRoles_WithoutAuthentication(t *testing.T) {
	router := gin.New()
	router.GET("/test", RequireRoles(authz.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetCurrentUser_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := GetCurrentUser(c)
	assert.ErrorIs(t, err, ErrNoCurrentUser)
	assert.Nil(t, GetClaims(c))
}
