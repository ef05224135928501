package users

import (
	"time"

	"github.com/pelita-hr/pelita/internal/rbac"
)

type createUserRequest struct {
	Email        string   `json:"email" validate:"required,email"`
	Password     string   `json:"password" validate:"required,min=8"`
	FirstName    string   `json:"first_name" validate:"required,max=100"`
	LastName     string   `json:"last_name" validate:"required,max=100"`
	Role         string   `json:"role,omitempty" validate:"omitempty,oneof=admin hr manager employee"`
	Permissions  []string `json:"permissions,omitempty"`
	DepartmentID *string  `json:"department_id,omitempty" validate:"omitempty,uuid"`
}

type updateUserRequest struct {
	FirstName    *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName     *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	DepartmentID *string `json:"department_id,omitempty" validate:"omitempty,uuid"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin hr manager employee"`
}

type updatePermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required,min=1"`
}

type userResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         rbac.Role `json:"role"`
	Permissions  []string  `json:"permissions"`
	DepartmentID *string   `json:"department_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         u.Role,
		Permissions:  rbac.ResolveEffectivePermissions(u.Permissions, u.Role),
		DepartmentID: u.DepartmentID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
