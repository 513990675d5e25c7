package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mentorlog/mentorlog-api/internal/cache"
	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/repository"
	"github.com/mentorlog/mentorlog-api/pkg/authz"
	"github.com/mentorlog/mentorlog-api/pkg/jwt"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"github.com/mentorlog/mentorlog-api/pkg/metrics"
	"go.uber.org/zap"
)

// TokenType is the token_type returned by login.
const TokenType = "bearer"

// AuthService handles registration, password login and bearer token checks.
type AuthService struct {
	users       repository.UserStore
	userCache   *cache.UserCache
	tokens      *jwt.TokenManager
	revocations cache.RevocationStore
}

// NewAuthService creates a new AuthService
func NewAuthService(users repository.UserStore, userCache *cache.UserCache, tokens *jwt.TokenManager, revocations cache.RevocationStore) *AuthService {
	return &AuthService{
		users:       users,
		userCache:   userCache,
		tokens:      tokens,
		revocations: revocations,
	}
}

// Register creates a mentor account. Elevated roles are assigned by admins
// through the users API.
func (s *AuthService) Register(ctx context.Context, req *models.UserCreateRequest) (*models.User, error) {
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, badRequest("Email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &models.User{
		Email:           strings.TrimSpace(req.Email),
		PasswordHash:    hash,
		Name:            req.Name,
		Designation:     req.Designation,
		RegionState:     req.RegionState,
		Role:            authz.RoleMentor,
		IsActive:        true,
		Specializations: req.Specializations,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, badRequest("Email already registered")
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	logger.Info("User registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user == nil || !CheckPassword(user.PasswordHash, req.Password) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		logger.Warn("Login failed", zap.String("email", req.Email))
		return nil, unauthorized("Incorrect email or password")
	}

	if !user.IsActive {
		metrics.LoginAttempts.WithLabelValues("inactive").Inc()
		return nil, forbidden("Account is inactive")
	}

	token, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	logger.Info("User logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))

	return &models.TokenResponse{AccessToken: token, TokenType: TokenType}, nil
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, *jwt.AccessClaims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, nil, unauthorized(msgInvalidCreds)
	}

	if claims.ID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if revoked {
			return nil, nil, unauthorized(msgInvalidCreds)
		}
	}

	user, err := s.userCache.Get(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, unauthorized(msgInvalidCreds)
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.IsActive {
		return nil, nil, forbidden("Inactive user")
	}
	return user, claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *jwt.AccessClaims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	logger.Info("User logged out", zap.String("user_id", claims.Subject))
	return nil
}
