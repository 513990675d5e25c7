// Package authz is the single set of role predicates shared by the API
// server and the client SDK.
package authz

import "fmt"

// Role is a closed set of user roles.
type Role string

const (
	RoleMentor     Role = "mentor"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleMentor, RoleSupervisor, RoleAdmin}

// ParseRole rejects anything outside the known roles.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleMentor, RoleSupervisor, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Principal is the identity an authorization decision is made for.
type Principal struct {
	ID   string
	Role Role
}

// Authorize reports whether user holds one of the allowed roles. With no
// allowed roles every non-nil user passes.
func Authorize(user *Principal, allowed ...Role) bool {
	if user == nil {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if user.Role == r {
			return true
		}
	}
	return false
}

// CanEdit: admins and supervisors edit anything, everyone else only their own.
func CanEdit(user *Principal, ownerID string) bool {
	if user == nil {
		return false
	}
	switch user.Role {
	case RoleAdmin, RoleSupervisor:
		return true
	case RoleMentor:
		return user.ID == ownerID
	default:
		return false
	}
}

// CanDelete is narrower than CanEdit: only admins delete what they don't own.
func CanDelete(user *Principal, ownerID string) bool {
	if user == nil {
		return false
	}
	switch user.Role {
	case RoleAdmin:
		return true
	case RoleSupervisor, RoleMentor:
		return user.ID == ownerID
	default:
		return false
	}
}

// IsReviewer reports whether the role may approve, return and reject logs.
func IsReviewer(user *Principal) bool {
	return Authorize(user, RoleSupervisor, RoleAdmin)
}
