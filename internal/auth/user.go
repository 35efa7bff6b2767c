package auth

import (
	"fmt"
	"time"

	"github.com/LSkevi/PieTracker/internal/email"
)

// Role determines the privileges of a user. It is the only input to
// authorization decisions, there are no other admin sentinels.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// ParseRole parses a role from a string.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return Role(raw), nil
	}
	return Role(""), fmt.Errorf("unknown role %q", raw)
}

// IsAdmin reports whether the role grants access to administrative
// operations.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// User contains the data for a user.
//
// IDs are opaque strings generated once and never reused. Username and
// Email are each unique across all users, active or not, compared
// case-insensitively.
type User struct {
	ID           string
	Username     string
	Email        email.Address
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}
