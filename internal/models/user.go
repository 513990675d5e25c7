package models

import (
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mentorlog/mentorlog-api/pkg/authz"
)

// User is an account. PasswordHash never leaves the server.
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	Name            string     `json:"name"`
	Designation     *string    `json:"designation"`
	RegionState     *string    `json:"region_state"`
	Role            authz.Role `json:"role"`
	SupervisorID    *string    `json:"supervisor_id"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Specializations []string   `json:"specializations"`
}

// Principal is the identity used for role checks.
func (u *User) Principal() *authz.Principal {
	if u == nil {
		return nil
	}
	return &authz.Principal{ID: u.ID, Role: u.Role}
}

// IsAdmin reports whether the user is an admin.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == authz.RoleAdmin
}

// HasSpecialization reports whether any of areas is one of the user's specializations.
func (u *User) HasSpecialization(areas []string) bool {
	for _, a := range areas {
		for _, s := range u.Specializations {
			if a == s {
				return true
			}
		}
	}
	return false
}

// UserSummary is the embedded view of a user on related records.
type UserSummary struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  authz.Role `json:"role"`
}

// UserCreateRequest is the payload for POST /api/users and /api/auth/register.
type UserCreateRequest struct {
	Email           string     `json:"email" binding:"required,email,max=255"`
	Name            string     `json:"name" binding:"required,min=1,max=255"`
	Designation     *string    `json:"designation" binding:"omitempty,max=100"`
	RegionState     *string    `json:"region_state" binding:"omitempty,max=100"`
	Role            authz.Role `json:"role" binding:"omitempty,oneof=mentor supervisor admin"`
	Password        string     `json:"password" binding:"required,min=8,max=128"`
	SupervisorID    *string    `json:"supervisor_id" binding:"omitempty,uuid"`
	Specializations []string   `json:"specializations" binding:"omitempty,dive,min=1,max=100"`
}

// UserUpdateRequest is the payload for PUT /api/users/:id. A nil
// Specializations leaves them unchanged; an empty list clears them.
type UserUpdateRequest struct {
	Email           *string     `json:"email" binding:"omitempty,email,max=255"`
	Name            *string     `json:"name" binding:"omitempty,min=1,max=255"`
	Designation     *string     `json:"designation" binding:"omitempty,max=100"`
	RegionState     *string     `json:"region_state" binding:"omitempty,max=100"`
	Role            *authz.Role `json:"role" binding:"omitempty,oneof=mentor supervisor admin"`
	SupervisorID    *string     `json:"supervisor_id" binding:"omitempty,uuid"`
	IsActive        *bool       `json:"is_active"`
	Password        *string     `json:"password" binding:"omitempty,min=8,max=128"`
	Specializations []string    `json:"specializations" binding:"omitempty,dive,min=1,max=100"`
}

// UserFilter narrows GET /api/users.
type UserFilter struct {
	Role     *authz.Role
	IsActive *bool
	Search   string
	Page
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserColumns is the select list matching ScanUser.
const UserColumns = `u.id, u.email, u.password_hash, u.name, u.designation, u.region_state,
	u.role::text, u.supervisor_id, u.is_active, u.created_at, u.updated_at`

// ScanUser scans a row selected with UserColumns.
func ScanUser(row pgx.Row) (*User, error) {
	var u User
	var role string

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Designation,
		&u.RegionState,
		&role,
		&u.SupervisorID,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Role = authz.Role(role)
	u.Specializations = []string{}
	return &u, nil
}

// ScanUsers scans every row and closes rows.
func ScanUsers(rows pgx.Rows) ([]*User, error) {
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		u, err := ScanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
