package users

import (
	"context"
	"fmt"

	"github.com/pelita-hr/pelita/internal/auth"
	"github.com/pelita-hr/pelita/internal/platform/httpx"
	"github.com/pelita-hr/pelita/internal/rbac"
)

// Service handles user management business logic. Account creation delegates
// to the auth service so password hashing and permission resolution happen in
// exactly one place.
type Service struct {
	repo        RepositoryPort
	authService *auth.Service
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, authService *auth.Service) *Service {
	return &Service{repo: repo, authService: authService}
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get fetches one user.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Create registers a new account on behalf of an admin or HR actor. The actor
// must hold authority over the role being granted.
func (s *Service) Create(ctx context.Context, actor *rbac.Principal, draft auth.RegisterDraft) (*auth.Summary, error) {
	role := draft.Role
	if role == "" {
		role = rbac.RoleEmployee
	}
	if !rbac.CanManage(actor.Role, role) {
		return nil, fmt.Errorf("%w: role %s may not grant role %s", httpx.ErrForbidden, actor.Role, role)
	}
	return s.authService.Register(ctx, draft)
}

// Update changes profile-level fields.
func (s *Service) Update(ctx context.Context, id string, apply func(*User)) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(user)
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangeRole moves a user to a new role and resets the stored permission set
// to the new role's defaults, discarding any explicit grants from the old
// role. The actor needs authority over both the current and the new role.
func (s *Service) ChangeRole(ctx context.Context, actor *rbac.Principal, id string, newRole rbac.Role) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rbac.CanManage(actor.Role, user.Role) || !rbac.CanManage(actor.Role, newRole) {
		return nil, fmt.Errorf("%w: role %s may not manage role change %s -> %s", httpx.ErrForbidden, actor.Role, user.Role, newRole)
	}
	defaults := rbac.DefaultPermissionsFor(newRole)
	if err := s.repo.UpdateRole(ctx, id, string(newRole), defaults); err != nil {
		return nil, err
	}
	user.Role = newRole
	user.Permissions = defaults
	return user, nil
}

// ChangePermissions replaces a user's explicit permission set.
func (s *Service) ChangePermissions(ctx context.Context, actor *rbac.Principal, id string, permissions []string) (*User, error) {
	for _, perm := range permissions {
		if !rbac.IsValidPermission(perm) {
			return nil, fmt.Errorf("%w: unknown permission %s", httpx.ErrValidation, perm)
		}
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rbac.CanManage(actor.Role, user.Role) {
		return nil, fmt.Errorf("%w: role %s may not manage role %s", httpx.ErrForbidden, actor.Role, user.Role)
	}
	if err := s.repo.UpdatePermissions(ctx, id, permissions); err != nil {
		return nil, err
	}
	user.Permissions = permissions
	return user, nil
}

// Delete removes a user. Self-deletion is rejected so an admin cannot lock
// themselves out mid-session.
func (s *Service) Delete(ctx context.Context, actor *rbac.Principal, id string) error {
	if actor.ID == id {
		return fmt.Errorf("%w: cannot delete own account", httpx.ErrForbidden)
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !rbac.CanManage(actor.Role, user.Role) {
		return fmt.Errorf("%w: role %s may not manage role %s", httpx.ErrForbidden, actor.Role, user.Role)
	}
	return s.repo.Delete(ctx, id)
}
