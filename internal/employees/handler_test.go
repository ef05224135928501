package employees

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pelita-hr/pelita/internal/rbac"
	"github.com/pelita-hr/pelita/internal/shared"
)

type memoryRepo struct {
	employees map[string]*Employee
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{employees: map[string]*Employee{}}
}

func (m *memoryRepo) Create(_ context.Context, emp *Employee) error {
	copied := *emp
	m.employees[emp.ID] = &copied
	return nil
}

func (m *memoryRepo) List(context.Context) ([]Employee, error) {
	out := make([]Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		out = append(out, *emp)
	}
	return out, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*Employee, error) {
	emp, ok := m.employees[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *emp
	return &copied, nil
}

func (m *memoryRepo) GetByUserID(_ context.Context, userID string) (*Employee, error) {
	for _, emp := range m.employees {
		if emp.UserID != nil && *emp.UserID == userID {
			copied := *emp
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memoryRepo) NextEmployeeCode(context.Context) (string, error) {
	return fmt.Sprintf("EMP%03d", len(m.employees)+1), nil
}

func (m *memoryRepo) Update(_ context.Context, emp *Employee) error {
	if _, ok := m.employees[emp.ID]; !ok {
		return shared.ErrNotFound
	}
	copied := *emp
	m.employees[emp.ID] = &copied
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.employees[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.employees, id)
	return nil
}

var _ RepositoryPort = (*memoryRepo)(nil)

func TestCreateAssignsSequentialCodes(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	first, err := svc.Create(ctx, EmployeeDraft{FirstName: "Citra", LastName: "Lestari", Email: "citra@pelita.local"})
	require.NoError(t, err)
	require.Equal(t, "EMP001", first.EmployeeCode)
	require.True(t, first.IsActive)

	second, err := svc.Create(ctx, EmployeeDraft{FirstName: "Dewi", LastName: "Putri", Email: "dewi@pelita.local"})
	require.NoError(t, err)
	require.Equal(t, "EMP002", second.EmployeeCode)
}

func TestSalaryVisibility(t *testing.T) {
	userID := "u1"
	pay := 18000000.0
	record := Employee{ID: "e1", EmployeeCode: "EMP001", Salary: &pay, UserID: &userID}

	// Without the permission the salary is withheld.
	plain := toEmployeeResponse(record, &rbac.Principal{ID: "u2", Role: rbac.RoleEmployee})
	require.Nil(t, plain.Salary)

	// The record owner always sees their own salary.
	own := toEmployeeResponse(record, &rbac.Principal{ID: "u1", Role: rbac.RoleEmployee})
	require.NotNil(t, own.Salary)
	require.Equal(t, pay, *own.Salary)

	// Holders of the salary permission see everyone's.
	hr := toEmployeeResponse(record, &rbac.Principal{
		ID:          "hr-1",
		Role:        rbac.RoleHR,
		Permissions: []string{rbac.PermEmployeeViewSalary},
	})
	require.NotNil(t, hr.Salary)

	// No principal at all means no salary.
	anonymous := toEmployeeResponse(record, nil)
	require.Nil(t, anonymous.Salary)
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	emp, err := svc.Create(ctx, EmployeeDraft{FirstName: "Citra", LastName: "Lestari", Email: "citra@pelita.local"})
	require.NoError(t, err)

	rating := 4
	updated, err := svc.Update(ctx, emp.ID, func(e *Employee) {
		e.PerformanceRating = &rating
	})
	require.NoError(t, err)
	require.Equal(t, 4, *updated.PerformanceRating)
	require.Equal(t, "Citra", updated.FirstName)

	_, err = svc.Update(ctx, "missing", func(*Employee) {})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetByUserID(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	userID := "u1"
	_, err := svc.Create(ctx, EmployeeDraft{FirstName: "Dewi", LastName: "Putri", Email: "dewi@pelita.local", UserID: &userID})
	require.NoError(t, err)

	emp, err := svc.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "dewi@pelita.local", emp.Email)

	_, err = svc.GetByUserID(ctx, "nobody")
	require.ErrorIs(t, err, shared.ErrNotFound)
}
