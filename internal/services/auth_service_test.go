package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mentorlog/mentorlog-api/internal/cache"
	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/repository"
	"github.com/mentorlog/mentorlog-api/internal/services"
	"github.com/mentorlog/mentorlog-api/pkg/authz"
	apperrors "github.com/mentorlog/mentorlog-api/pkg/errors"
	"github.com/mentorlog/mentorlog-api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-with-enough-length"

func newAuthService(users *MockUserStore) (*services.AuthService, *jwt.TokenManager) {
	tokens := jwt.NewTokenManager(testSecret, "mentorlog-api", 1)
	userCache := cache.NewUserCache(users.GetByID, time.Minute)
	return services.NewAuthService(users, userCache, tokens, cache.NewMemoryRevocationStore()), tokens
}

func TestAuthService_Register_ForcesMentorRole(t *testing.T) {
	users := new(MockUserStore)
	service, _ := newAuthService(users)
	ctx := context.Background()

	req := &models.UserCreateRequest{
		Email:    "new@example.org",
		Name:     "New Mentor",
		Password: "password123",
		Role:     authz.RoleAdmin,
	}

	users.On("GetByEmail", ctx, "new@example.org").Return(nil, repository.ErrNotFound).Once()
	users.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Role == authz.RoleMentor && u.IsActive && u.PasswordHash != "" && u.PasswordHash != "password123"
	})).Return(&models.User{ID: "u1", Role: authz.RoleMentor}, nil).Once()

	user, err := service.Register(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, authz.RoleMentor, user.Role)
	users.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	users := new(MockUserStore)
	service, _ := newAuthService(users)
	ctx := context.Background()

	users.On("GetByEmail", ctx, "dup@example.org").Return(&models.User{ID: "u1"}, nil).Once()

	_, err := service.Register(ctx, &models.UserCreateRequest{Email: "dup@example.org", Password: "password123"})
	assertAppError(t, err, apperrors.ErrInvalidInput, "Email already registered")
	users.AssertNotCalled(t, "Create")
}

func TestAuthService_Login(t *testing.T) {
	hash, err := services.HashPassword("correct-horse")
	require.NoError(t, err)

	tests := []struct {
		name     string
		user     *models.User
		lookup   error
		password string
		sentinel error
		detail   string
	}{
		{name: "success", user: &models.User{ID: "u1", Role: authz.RoleSupervisor, IsActive: true, PasswordHash: hash}, password: "correct-horse"},
		{name: "wrong password", user: &models.User{ID: "u1", IsActive: true, PasswordHash: hash}, password: "nope",
			sentinel: apperrors.ErrUnauthorized, detail: "Incorrect email or password"},
		{name: "unknown email", lookup: repository.ErrNotFound, password: "whatever",
			sentinel: apperrors.ErrUnauthorized, detail: "Incorrect email or password"},
		{name: "inactive", user: &models.User{ID: "u1", IsActive: false, PasswordHash: hash}, password: "correct-horse",
			sentinel: apperrors.ErrAccessDenied, detail: "Account is inactive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserStore)
			service, tokens := newAuthService(users)
			ctx := context.Background()

			if tt.user != nil {
				users.On("GetByEmail", ctx, "a@example.org").Return(tt.user, nil).Once()
			} else {
				users.On("GetByEmail", ctx, "a@example.org").Return(nil, tt.lookup).Once()
			}

			resp, err := service.Login(ctx, &models.LoginRequest{Email: "a@example.org", Password: tt.password})
			if tt.sentinel != nil {
				assertAppError(t, err, tt.sentinel, tt.detail)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "bearer", resp.TokenType)
			claims, err := tokens.ValidateToken(resp.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, "u1", claims.Subject)
			assert.Equal(t, "supervisor", claims.Role)
		})
	}
}

func TestAuthService_Login_StoreError(t *testing.T) {
	users := new(MockUserStore)
	service, _ := newAuthService(users)
	ctx := context.Background()

	users.On("GetByEmail", ctx, "a@example.org").Return(nil, errors.New("connection refused")).Once()

	_, err := service.Login(ctx, &models.LoginRequest{Email: "a@example.org", Password: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_Authenticate(t *testing.T) {
	users := new(MockUserStore)
	service, tokens := newAuthService(users)
	ctx := context.Background()

	token, err := tokens.GenerateToken("u1", "mentor")
	require.NoError(t, err)

	users.On("GetByID", mock.Anything, "u1").Return(&models.User{ID: "u1", Role: authz.RoleMentor, IsActive: true}, nil).Once()

	user, claims, err := service.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.NotEmpty(t, claims.ID)

	// Second call is served from the user cache.
	_, _, err = service.Authenticate(ctx, token)
	require.NoError(t, err)
	users.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestAuthService_Authenticate_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("garbage token", func(t *testing.T) {
		service, _ := newAuthService(new(MockUserStore))
		_, _, err := service.Authenticate(ctx, "not-a-jwt")
		assertAppError(t, err, apperrors.ErrUnauthorized, "Invalid authentication credentials")
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		service, _ := newAuthService(new(MockUserStore))
		other := jwt.NewTokenManager("another-secret-key-with-enough-len", "mentorlog-api", 1)
		token, err := other.GenerateToken("u1", "admin")
		require.NoError(t, err)

		_, _, err = service.Authenticate(ctx, token)
		assertAppError(t, err, apperrors.ErrUnauthorized, "Invalid authentication credentials")
	})

	t.Run("deleted user", func(t *testing.T) {
		users := new(MockUserStore)
		service, tokens := newAuthService(users)
		token, err := tokens.GenerateToken("gone", "mentor")
		require.NoError(t, err)
		users.On("GetByID", mock.Anything, "gone").Return(nil, repository.ErrNotFound).Once()

		_, _, err = service.Authenticate(ctx, token)
		assertAppError(t, err, apperrors.ErrUnauthorized, "Invalid authentication credentials")
	})

	t.Run("inactive user", func(t *testing.T) {
		users := new(MockUserStore)
		service, tokens := newAuthService(users)
		token, err := tokens.GenerateToken("u1", "mentor")
		require.NoError(t, err)
		users.On("GetByID", mock.Anything, "u1").Return(&models.User{ID: "u1", IsActive: false}, nil).Once()

		_, _, err = service.Authenticate(ctx, token)
		assertAppError(t, err, apperrors.ErrAccessDenied, "Inactive user")
	})
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	users := new(MockUserStore)
	service, tokens := newAuthService(users)
	ctx := context.Background()

	token, err := tokens.GenerateToken("u1", "mentor")
	require.NoError(t, err)
	users.On("GetByID", mock.Anything, "u1").Return(&models.User{ID: "u1", IsActive: true}, nil)

	_, claims, err := service.Authenticate(ctx, token)
	require.NoError(t, err)

	require.NoError(t, service.Logout(ctx, claims))

	_, _, err = service.Authenticate(ctx, token)
	assertAppError(t, err, apperrors.ErrUnauthorized, "Invalid authentication credentials")

	assert.NoError(t, service.Logout(ctx, nil))
}
