package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mentorlog/mentorlog-api/internal/cache"
	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/repository"
	"github.com/mentorlog/mentorlog-api/pkg/authz"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"go.uber.org/zap"
)

// UserService manages user accounts.
type UserService struct {
	users     repository.UserStore
	userCache *cache.UserCache
}

// NewUserService creates a new UserService
func NewUserService(users repository.UserStore, userCache *cache.UserCache) *UserService {
	return &UserService{users: users, userCache: userCache}
}

func (s *UserService) List(ctx context.Context, filter models.UserFilter) (models.Paginated[*models.User], error) {
	filter.Page = filter.Page.Normalize()
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return models.Paginated[*models.User]{}, err
	}
	return models.NewPaginated(users, total, filter.Page), nil
}

// Get returns a user. Mentors may only look themselves up.
func (s *UserService) Get(ctx context.Context, actor *models.User, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgUserNotFound)
	}
	if actor.Role == authz.RoleMentor && actor.ID != user.ID {
		return nil, forbidden("You can only view your own profile")
	}
	return user, nil
}

// Create is the admin user creation path. Any role may be assigned.
func (s *UserService) Create(ctx context.Context, req *models.UserCreateRequest) (*models.User, error) {
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, badRequest(fmt.Sprintf("User with email '%s' already exists", req.Email))
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if err := s.checkSupervisor(ctx, req.SupervisorID); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = authz.RoleMentor
	}

	user, err := s.users.Create(ctx, &models.User{
		Email:           req.Email,
		PasswordHash:    hash,
		Name:            req.Name,
		Designation:     req.Designation,
		RegionState:     req.RegionState,
		Role:            role,
		SupervisorID:    req.SupervisorID,
		IsActive:        true,
		Specializations: req.Specializations,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, badRequest(fmt.Sprintf("User with email '%s' already exists", req.Email))
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("User created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// checkUpdatePermissions applies the per-role rules for PUT /api/users/:id.
func checkUpdatePermissions(actor, target *models.User, req *models.UserUpdateRequest) error {
	switch actor.Role {
	case authz.RoleAdmin:
		return nil
	case authz.RoleSupervisor:
		if req.Role != nil {
			return forbidden("Supervisors cannot change user roles")
		}
		if req.IsActive != nil {
			return forbidden("Only admins can change account status")
		}
		if target.Role != authz.RoleMentor {
			return forbidden("Supervisors can only update mentor profiles")
		}
		return nil
	case authz.RoleMentor:
		if actor.ID != target.ID {
			return forbidden("Mentors can only update their own profile")
		}
		if req.Role != nil {
			return forbidden("You cannot change your own role")
		}
		if req.IsActive != nil || req.SupervisorID != nil {
			return forbidden("Only admins can change account status or supervisor")
		}
		return nil
	default:
		return forbidden(msgInsufficient)
	}
}

func (s *UserService) Update(ctx context.Context, actor *models.User, id string, req *models.UserUpdateRequest) (*models.User, error) {
	target, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgUserNotFound)
	}

	if err := checkUpdatePermissions(actor, target, req); err != nil {
		return nil, err
	}
	if err := s.checkSupervisor(ctx, req.SupervisorID); err != nil {
		return nil, err
	}

	if req.Email != nil {
		target.Email = *req.Email
	}
	if req.Name != nil {
		target.Name = *req.Name
	}
	setIfPresent(&target.Designation, req.Designation)
	setIfPresent(&target.RegionState, req.RegionState)
	if req.Role != nil {
		target.Role = *req.Role
	}
	setIfPresent(&target.SupervisorID, req.SupervisorID)
	if req.IsActive != nil {
		target.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hash, err := HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		target.PasswordHash = hash
	}
	if req.Specializations != nil {
		target.Specializations = req.Specializations
	}

	updated, err := s.users.Update(ctx, target, req.Specializations != nil)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, badRequest("Email already registered")
		}
		return nil, lookupError(err, msgUserNotFound)
	}

	s.userCache.Invalidate(id)
	logger.Info("User updated", zap.String("user_id", id), zap.String("actor_id", actor.ID))
	return updated, nil
}

func (s *UserService) SetActive(ctx context.Context, id string, active bool) (*models.User, error) {
	user, err := s.users.SetActive(ctx, id, active)
	if err != nil {
		return nil, lookupError(err, msgUserNotFound)
	}
	s.userCache.Invalidate(id)
	logger.Info("User status changed", zap.String("user_id", id), zap.Bool("is_active", active))
	return user, nil
}

// Delete refuses to remove users that still own mentorship logs.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return lookupError(err, msgUserNotFound)
	}

	hasLogs, err := s.users.HasLogs(ctx, id)
	if err != nil {
		return err
	}
	if hasLogs {
		return badRequest("Cannot delete user with associated mentorship logs. Consider deactivating the user instead.")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return lookupError(err, msgUserNotFound)
	}
	s.userCache.Invalidate(id)
	logger.Info("User deleted", zap.String("user_id", id))
	return nil
}

func (s *UserService) checkSupervisor(ctx context.Context, supervisorID *string) error {
	if supervisorID == nil {
		return nil
	}
	supervisor, err := s.users.GetByID(ctx, *supervisorID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if supervisor == nil || supervisor.Role != authz.RoleSupervisor {
		return badRequest("Invalid supervisor_id. Must be an existing supervisor.")
	}
	return nil
}

func setIfPresent(dst **string, src *string) {
	if src != nil {
		*dst = src
	}
}
