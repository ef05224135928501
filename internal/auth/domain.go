// Package auth implements credential lifecycle: login, registration, token
// issuance, verification and rotation, plus the request authentication guard.
package auth

import (
	"time"

	"github.com/pelita-hr/pelita/internal/rbac"
)

// User represents a user account including the stored password hash. Only the
// auth layer ever sees the hash; everything returned to callers is a Summary.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         rbac.Role
	Permissions  []string
	DepartmentID *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary is the redacted user view relayed to clients. It never carries the
// password hash.
type Summary struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	Role        rbac.Role `json:"role"`
	Permissions []string  `json:"permissions"`
}

// Redact strips credentials from a user record.
func (u *User) Redact() Summary {
	return Summary{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		Permissions: rbac.ResolveEffectivePermissions(u.Permissions, u.Role),
	}
}
