package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pelita-hr/pelita/internal/platform/httpx"
	"github.com/pelita-hr/pelita/internal/rbac"
	"github.com/pelita-hr/pelita/internal/shared"
)

type memoryRepo struct {
	tasks map[string]*Task
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{tasks: map[string]*Task{}}
}

func (m *memoryRepo) Create(_ context.Context, task *Task) error {
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *memoryRepo) List(context.Context) ([]Task, error) {
	out := make([]Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		out = append(out, *task)
	}
	return out, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*Task, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *task
	return &copied, nil
}

func (m *memoryRepo) ListByAssignee(_ context.Context, userID string) ([]Task, error) {
	var out []Task
	for _, task := range m.tasks {
		if task.AssignedTo != nil && *task.AssignedTo == userID {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListForUser(_ context.Context, userID string) ([]Task, error) {
	var out []Task
	for _, task := range m.tasks {
		if involves(task, userID) {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListByStatus(_ context.Context, status Status) ([]Task, error) {
	var out []Task
	for _, task := range m.tasks {
		if task.Status == status {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListByPriority(_ context.Context, priority Priority) ([]Task, error) {
	var out []Task
	for _, task := range m.tasks {
		if task.Priority == priority {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListOverdue(_ context.Context) ([]Task, error) {
	var out []Task
	now := time.Now()
	for _, task := range m.tasks {
		if task.DueDate != nil && task.DueDate.Before(now) && task.Status != StatusDone && task.Status != StatusCancelled {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (m *memoryRepo) CountByColumn(_ context.Context, column string) (map[string]int, error) {
	counts := map[string]int{}
	for _, task := range m.tasks {
		switch column {
		case "status":
			counts[string(task.Status)]++
		case "priority":
			counts[string(task.Priority)]++
		}
	}
	return counts, nil
}

func (m *memoryRepo) CountAll(context.Context) (int, error) {
	return len(m.tasks), nil
}

func (m *memoryRepo) CountOverdue(ctx context.Context) (int, error) {
	overdue, err := m.ListOverdue(ctx)
	return len(overdue), err
}

func (m *memoryRepo) Update(_ context.Context, task *Task) error {
	if _, ok := m.tasks[task.ID]; !ok {
		return shared.ErrNotFound
	}
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.tasks[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

var _ RepositoryPort = (*memoryRepo)(nil)

type stubUsers struct {
	known map[string]bool
}

func (s stubUsers) Exists(_ context.Context, id string) (bool, error) {
	return s.known[id], nil
}

func managerPrincipal() *rbac.Principal {
	return &rbac.Principal{ID: "mgr-1", Role: rbac.RoleManager}
}

func employeePrincipal(id string) *rbac.Principal {
	return &rbac.Principal{ID: id, Role: rbac.RoleEmployee}
}

func TestCreateDefaults(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, stubUsers{known: map[string]bool{"emp-1": true}})

	task, err := svc.Create(context.Background(), managerPrincipal(), TaskDraft{Title: "Prepare onboarding"})
	require.NoError(t, err)
	require.Equal(t, StatusTodo, task.Status)
	require.Equal(t, PriorityMedium, task.Priority)
	require.Equal(t, "mgr-1", task.CreatedBy)
}

func TestCreateUnknownAssignee(t *testing.T) {
	svc := NewService(newMemoryRepo(), stubUsers{known: map[string]bool{}})

	assignee := "ghost"
	_, err := svc.Create(context.Background(), managerPrincipal(), TaskDraft{
		Title:      "Orphan",
		AssignedTo: &assignee,
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListScopesEmployees(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, stubUsers{known: map[string]bool{"emp-1": true}})
	ctx := context.Background()

	assignee := "emp-1"
	_, err := svc.Create(ctx, managerPrincipal(), TaskDraft{Title: "Mine", AssignedTo: &assignee})
	require.NoError(t, err)
	_, err = svc.Create(ctx, managerPrincipal(), TaskDraft{Title: "Someone else's"})
	require.NoError(t, err)

	mine, err := svc.List(ctx, employeePrincipal("emp-1"))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "Mine", mine[0].Title)

	all, err := svc.List(ctx, managerPrincipal())
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestGetDeniesUninvolvedEmployee(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, stubUsers{known: map[string]bool{}})
	ctx := context.Background()

	task, err := svc.Create(ctx, managerPrincipal(), TaskDraft{Title: "Private"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, employeePrincipal("emp-2"), task.ID)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	got, err := svc.Get(ctx, managerPrincipal(), task.ID)
	require.NoError(t, err)
	require.Equal(t, task.ID, got.ID)
}

func TestUpdateStatusStampsCompletion(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, stubUsers{known: map[string]bool{}})
	done := time.Date(2026, 4, 2, 16, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return done }
	ctx := context.Background()

	task, err := svc.Create(ctx, managerPrincipal(), TaskDraft{Title: "Finish report"})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, managerPrincipal(), task.ID, StatusDone)
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedDate)
	require.True(t, updated.CompletedDate.Equal(done))

	reopened, err := svc.UpdateStatus(ctx, managerPrincipal(), task.ID, StatusInProgress)
	require.NoError(t, err)
	require.Nil(t, reopened.CompletedDate)
}

func TestAssignChecksUser(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, stubUsers{known: map[string]bool{"emp-1": true}})
	ctx := context.Background()

	task, err := svc.Create(ctx, managerPrincipal(), TaskDraft{Title: "Reassign me"})
	require.NoError(t, err)

	_, err = svc.Assign(ctx, task.ID, "ghost")
	require.ErrorIs(t, err, shared.ErrNotFound)

	assigned, err := svc.Assign(ctx, task.ID, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedTo)
	require.Equal(t, "emp-1", *assigned.AssignedTo)
}

func TestDeleteRequiresCreatorOrElevatedRole(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, stubUsers{known: map[string]bool{}})
	ctx := context.Background()

	creator := employeePrincipal("emp-1")
	task, err := svc.Create(ctx, creator, TaskDraft{Title: "Short-lived"})
	require.NoError(t, err)

	err = svc.Delete(ctx, employeePrincipal("emp-2"), task.ID)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	err = svc.Delete(ctx, &rbac.Principal{ID: "hr-1", Role: rbac.RoleHR}, task.ID)
	require.NoError(t, err)

	err = svc.Delete(ctx, creator, task.ID)
	require.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGetStatistics(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, stubUsers{known: map[string]bool{}})
	ctx := context.Background()

	past := time.Now().Add(-48 * time.Hour)
	for _, draft := range []TaskDraft{
		{Title: "a", Priority: PriorityHigh, DueDate: &past},
		{Title: "b", Priority: PriorityHigh},
		{Title: "c"},
	} {
		_, err := svc.Create(ctx, managerPrincipal(), draft)
		require.NoError(t, err)
	}

	stats, err := svc.GetStatistics(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Total)
	require.Equal(t, 1, stats.Overdue)
	require.Equal(t, 3, stats.ByStatus[string(StatusTodo)])
	require.Equal(t, 2, stats.ByPriority[string(PriorityHigh)])
	require.Equal(t, 1, stats.ByPriority[string(PriorityMedium)])
}
