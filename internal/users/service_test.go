package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pelita-hr/pelita/internal/auth"
	"github.com/pelita-hr/pelita/internal/platform/httpx"
	"github.com/pelita-hr/pelita/internal/rbac"
	"github.com/pelita-hr/pelita/internal/shared"
)

type memoryRepo struct {
	users map[string]*User
}

func newMemoryRepo(seed ...*User) *memoryRepo {
	repo := &memoryRepo{users: map[string]*User{}}
	for _, user := range seed {
		copied := *user
		repo.users[user.ID] = &copied
	}
	return repo
}

func (m *memoryRepo) List(context.Context) ([]User, error) {
	out := make([]User, 0, len(m.users))
	for _, user := range m.users {
		out = append(out, *user)
	}
	return out, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memoryRepo) Update(_ context.Context, user *User) error {
	if _, ok := m.users[user.ID]; !ok {
		return shared.ErrNotFound
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memoryRepo) UpdateRole(_ context.Context, id string, role string, permissions []string) error {
	user, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	user.Role = rbac.Role(role)
	user.Permissions = permissions
	return nil
}

func (m *memoryRepo) UpdatePermissions(_ context.Context, id string, permissions []string) error {
	user, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	user.Permissions = permissions
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

var _ RepositoryPort = (*memoryRepo)(nil)

type stubAuthRepo struct {
	created *auth.User
}

func (s *stubAuthRepo) FindByEmail(context.Context, string) (*auth.User, error) {
	return nil, shared.ErrNotFound
}

func (s *stubAuthRepo) FindByID(context.Context, string) (*auth.User, error) {
	return nil, shared.ErrNotFound
}

func (s *stubAuthRepo) Create(_ context.Context, user *auth.User) (*auth.User, error) {
	s.created = user
	stored := *user
	stored.IsActive = true
	return &stored, nil
}

func adminPrincipal() *rbac.Principal {
	return &rbac.Principal{ID: "adm-1", Role: rbac.RoleAdmin}
}

func hrPrincipal() *rbac.Principal {
	return &rbac.Principal{ID: "hr-1", Role: rbac.RoleHR}
}

func TestCreateEnforcesRoleAuthority(t *testing.T) {
	authRepo := &stubAuthRepo{}
	svc := NewService(newMemoryRepo(), auth.NewService(authRepo, nil, nil, nil))
	ctx := context.Background()

	_, err := svc.Create(ctx, hrPrincipal(), auth.RegisterDraft{
		Email:    "root@pelita.local",
		Password: "rahasia123",
		Role:     rbac.RoleAdmin,
	})
	require.ErrorIs(t, err, httpx.ErrForbidden)

	summary, err := svc.Create(ctx, hrPrincipal(), auth.RegisterDraft{
		Email:    "baru@pelita.local",
		Password: "rahasia123",
	})
	require.NoError(t, err)
	require.Equal(t, rbac.RoleEmployee, summary.Role)
	require.NotNil(t, authRepo.created)
}

func TestChangeRoleResetsPermissions(t *testing.T) {
	target := &User{
		ID:          "u1",
		Role:        rbac.RoleEmployee,
		Permissions: []string{rbac.PermTaskRead},
	}
	svc := NewService(newMemoryRepo(target), nil)

	updated, err := svc.ChangeRole(context.Background(), adminPrincipal(), "u1", rbac.RoleManager)
	require.NoError(t, err)
	require.Equal(t, rbac.RoleManager, updated.Role)
	require.ElementsMatch(t, rbac.DefaultPermissionsFor(rbac.RoleManager), updated.Permissions)
}

func TestChangeRoleRequiresAuthorityOverBothRoles(t *testing.T) {
	admin := &User{ID: "u1", Role: rbac.RoleAdmin}
	employee := &User{ID: "u2", Role: rbac.RoleEmployee}
	svc := NewService(newMemoryRepo(admin, employee), nil)
	ctx := context.Background()

	// HR cannot touch an admin account.
	_, err := svc.ChangeRole(ctx, hrPrincipal(), "u1", rbac.RoleEmployee)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	// HR cannot promote into admin either.
	_, err = svc.ChangeRole(ctx, hrPrincipal(), "u2", rbac.RoleAdmin)
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestChangePermissions(t *testing.T) {
	target := &User{ID: "u1", Role: rbac.RoleEmployee}
	svc := NewService(newMemoryRepo(target), nil)
	ctx := context.Background()

	_, err := svc.ChangePermissions(ctx, adminPrincipal(), "u1", []string{"user:fly"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	updated, err := svc.ChangePermissions(ctx, adminPrincipal(), "u1", []string{rbac.PermTaskRead})
	require.NoError(t, err)
	require.Equal(t, []string{rbac.PermTaskRead}, updated.Permissions)
}

func TestDeleteRules(t *testing.T) {
	admin := &User{ID: "adm-1", Role: rbac.RoleAdmin}
	other := &User{ID: "u2", Role: rbac.RoleEmployee}
	repo := newMemoryRepo(admin, other)
	svc := NewService(repo, nil)
	ctx := context.Background()

	err := svc.Delete(ctx, adminPrincipal(), "adm-1")
	require.ErrorIs(t, err, httpx.ErrForbidden)

	err = svc.Delete(ctx, adminPrincipal(), "missing")
	require.ErrorIs(t, err, shared.ErrNotFound)

	err = svc.Delete(ctx, hrPrincipal(), "u2")
	require.NoError(t, err)
	_, err = repo.GetByID(ctx, "u2")
	require.ErrorIs(t, err, shared.ErrNotFound)
}
