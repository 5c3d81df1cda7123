package domain

import (
	"strings"
	"time"
)

// Roles, compared case-insensitively. Superadmin is a strict superset
// of admin for authorization purposes.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// User is an account row as stored in the users table. Role and status
// are only ever trusted from this row, never from token claims.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	Plan      string    `json:"plan,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the user's role is admin or superadmin.
func (u *User) IsAdmin() bool {
	role := strings.ToLower(u.Role)
	return role == RoleAdmin || role == RoleSuperAdmin
}

// IsSuperAdmin reports whether the user's role is exactly superadmin.
func (u *User) IsSuperAdmin() bool {
	return strings.EqualFold(u.Role, RoleSuperAdmin)
}

// Principal is the resolved, authenticated identity attached to a
// request for the remainder of its processing.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`

	// Synthetic marks the built-in local admin, which is not backed
	// by a users row.
	Synthetic bool `json:"-"`
}

// LocalLoginRequest is the body for POST /v1/auth/local-login.
type LocalLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LocalLoginResponse carries the locally-signed admin token.
type LocalLoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"`
}

// UpdateRoleRequest is the body for PATCH /v1/admin/users/{id}/role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}
