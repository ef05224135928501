package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pelita-hr/pelita/internal/platform/httpx"
	"github.com/pelita-hr/pelita/internal/rbac"
	"github.com/pelita-hr/pelita/internal/shared"
)

// UserLookup resolves user existence for assignment checks.
type UserLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Service handles task business logic.
type Service struct {
	repo  RepositoryPort
	users UserLookup
	now   func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, users UserLookup) *Service {
	return &Service{repo: repo, users: users, now: time.Now}
}

// TaskDraft carries fields for a new task.
type TaskDraft struct {
	Title          string
	Description    *string
	Priority       Priority
	DueDate        *time.Time
	AssignedTo     *string
	ProjectID      *string
	DepartmentID   *string
	EstimatedHours int
	Tags           []string
}

// Create stores a new task. New tasks start in the todo status; an assignee,
// when given, must exist.
func (s *Service) Create(ctx context.Context, actor *rbac.Principal, draft TaskDraft) (*Task, error) {
	if draft.AssignedTo != nil {
		if err := s.checkAssignee(ctx, *draft.AssignedTo); err != nil {
			return nil, err
		}
	}
	priority := draft.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	task := &Task{
		ID:             uuid.NewString(),
		Title:          draft.Title,
		Description:    draft.Description,
		Priority:       priority,
		Status:         StatusTodo,
		DueDate:        draft.DueDate,
		AssignedTo:     draft.AssignedTo,
		CreatedBy:      actor.ID,
		ProjectID:      draft.ProjectID,
		DepartmentID:   draft.DepartmentID,
		EstimatedHours: draft.EstimatedHours,
		Tags:           draft.Tags,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns tasks visible to the actor. Employees see only tasks they are
// assigned to or created; every other role sees the full list.
func (s *Service) List(ctx context.Context, actor *rbac.Principal) ([]Task, error) {
	if actor.Role == rbac.RoleEmployee {
		return s.repo.ListForUser(ctx, actor.ID)
	}
	return s.repo.List(ctx)
}

// Get fetches one task. Employees can only read tasks they are involved in.
func (s *Service) Get(ctx context.Context, actor *rbac.Principal, id string) (*Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == rbac.RoleEmployee && !involves(task, actor.ID) {
		return nil, fmt.Errorf("%w: you can only view your own tasks", httpx.ErrForbidden)
	}
	return task, nil
}

// My returns tasks assigned to the actor.
func (s *Service) My(ctx context.Context, actor *rbac.Principal) ([]Task, error) {
	return s.repo.ListByAssignee(ctx, actor.ID)
}

// ByStatus returns tasks in the given status.
func (s *Service) ByStatus(ctx context.Context, status Status) ([]Task, error) {
	return s.repo.ListByStatus(ctx, status)
}

// ByPriority returns tasks at the given priority.
func (s *Service) ByPriority(ctx context.Context, priority Priority) ([]Task, error) {
	return s.repo.ListByPriority(ctx, priority)
}

// Overdue returns open tasks past their due date.
func (s *Service) Overdue(ctx context.Context) ([]Task, error) {
	return s.repo.ListOverdue(ctx)
}

// TaskUpdate carries partial changes for a task.
type TaskUpdate struct {
	Title          *string
	Description    *string
	Priority       *Priority
	Status         *Status
	DueDate        *time.Time
	AssignedTo     *string
	EstimatedHours *int
	ActualHours    *int
	Comments       *string
	Tags           []string
}

// Update applies partial changes. Employees may only update tasks they are
// involved in. Moving a task to done stamps the completion date; moving it
// back out of done clears it.
func (s *Service) Update(ctx context.Context, actor *rbac.Principal, id string, upd TaskUpdate) (*Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == rbac.RoleEmployee && !involves(task, actor.ID) {
		return nil, fmt.Errorf("%w: you can only update your own tasks", httpx.ErrForbidden)
	}
	if upd.AssignedTo != nil {
		if err := s.checkAssignee(ctx, *upd.AssignedTo); err != nil {
			return nil, err
		}
		task.AssignedTo = upd.AssignedTo
	}
	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = upd.Description
	}
	if upd.Priority != nil {
		task.Priority = *upd.Priority
	}
	if upd.Status != nil {
		s.applyStatus(task, *upd.Status)
	}
	if upd.DueDate != nil {
		task.DueDate = upd.DueDate
	}
	if upd.EstimatedHours != nil {
		task.EstimatedHours = *upd.EstimatedHours
	}
	if upd.ActualHours != nil {
		task.ActualHours = *upd.ActualHours
	}
	if upd.Comments != nil {
		task.Comments = upd.Comments
	}
	if upd.Tags != nil {
		task.Tags = upd.Tags
	}
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Assign moves a task to a new assignee.
func (s *Service) Assign(ctx context.Context, id, assigneeID string) (*Task, error) {
	if err := s.checkAssignee(ctx, assigneeID); err != nil {
		return nil, err
	}
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	task.AssignedTo = &assigneeID
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateStatus moves a task to a new status.
func (s *Service) UpdateStatus(ctx context.Context, actor *rbac.Principal, id string, status Status) (*Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == rbac.RoleEmployee && !involves(task, actor.ID) {
		return nil, fmt.Errorf("%w: you can only update your own tasks", httpx.ErrForbidden)
	}
	s.applyStatus(task, status)
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task. Only the creator, admins, and HR may delete.
func (s *Service) Delete(ctx context.Context, actor *rbac.Principal, id string) error {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	elevated := actor.Role == rbac.RoleAdmin || actor.Role == rbac.RoleHR
	if !elevated && task.CreatedBy != actor.ID {
		return fmt.Errorf("%w: only the creator can delete a task", httpx.ErrForbidden)
	}
	return s.repo.Delete(ctx, id)
}

// GetStatistics gathers aggregate counts. The four queries run concurrently.
func (s *Service) GetStatistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.repo.CountAll(ctx)
		stats.Total = total
		return err
	})
	g.Go(func() error {
		byStatus, err := s.repo.CountByColumn(ctx, "status")
		stats.ByStatus = byStatus
		return err
	})
	g.Go(func() error {
		byPriority, err := s.repo.CountByColumn(ctx, "priority")
		stats.ByPriority = byPriority
		return err
	})
	g.Go(func() error {
		overdue, err := s.repo.CountOverdue(ctx)
		stats.Overdue = overdue
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Service) applyStatus(task *Task, status Status) {
	task.Status = status
	if status == StatusDone {
		now := s.now()
		task.CompletedDate = &now
	} else {
		task.CompletedDate = nil
	}
}

func (s *Service) checkAssignee(ctx context.Context, id string) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: assignee not found", shared.ErrNotFound)
	}
	return nil
}

func involves(task *Task, userID string) bool {
	if task.CreatedBy == userID {
		return true
	}
	return task.AssignedTo != nil && *task.AssignedTo == userID
}
