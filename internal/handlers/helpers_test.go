package handlers

import (
	"io"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mentorlog/mentorlog-api/internal/middleware"
	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/pkg/authz"
	"github.com/mentorlog/mentorlog-api/pkg/jwt"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = logger.Initialize(logger.Config{Level: "error", Environment: "test"})
}

func testUser(id string, role authz.Role) *models.User {
	return &models.User{ID: id, Email: id + "@example.org", Name: "User " + id, Role: role, IsActive: true, Specializations: []string{}}
}

// asUser stands in for the bearer middleware.
func asUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := &jwt.AccessClaims{Role: string(user.Role)}
		claims.Subject = user.ID
		claims.ID = "jti-" + user.ID
		c.Set(middleware.CurrentUserContextKey, user)
		c.Set(middleware.ClaimsContextKey, claims)
		c.Next()
	}
}

func serve(router *gin.Engine, method, target string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}
