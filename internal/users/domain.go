// Package users implements user account management endpoints.
package users

import (
	"time"

	"github.com/pelita-hr/pelita/internal/rbac"
)

// User represents a user account for management views. The password hash is
// never selected into this struct.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Role         rbac.Role
	Permissions  []string
	DepartmentID *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
