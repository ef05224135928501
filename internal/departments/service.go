package departments

import (
	"context"

	"github.com/google/uuid"
)

// Service handles department business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// DepartmentDraft carries fields for a new department.
type DepartmentDraft struct {
	Name        string
	Description *string
	Code        *string
	ManagerID   *string
	Budget      *float64
	Location    *string
}

// Create stores a new department. New departments start active.
func (s *Service) Create(ctx context.Context, draft DepartmentDraft) (*Department, error) {
	dept := &Department{
		ID:          uuid.NewString(),
		Name:        draft.Name,
		Description: draft.Description,
		Code:        draft.Code,
		ManagerID:   draft.ManagerID,
		Budget:      draft.Budget,
		Location:    draft.Location,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// List returns all departments.
func (s *Service) List(ctx context.Context) ([]Department, error) {
	return s.repo.List(ctx)
}

// Get fetches one department.
func (s *Service) Get(ctx context.Context, id string) (*Department, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByManager returns departments whose manager matches the given user.
func (s *Service) ListByManager(ctx context.Context, managerID string) ([]Department, error) {
	return s.repo.ListByManager(ctx, managerID)
}

// Budget returns the allocated budget for one department.
func (s *Service) Budget(ctx context.Context, id string) (float64, error) {
	return s.repo.GetBudget(ctx, id)
}

// Update applies partial changes to a department.
func (s *Service) Update(ctx context.Context, id string, apply func(*Department)) (*Department, error) {
	dept, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(dept)
	if err := s.repo.Update(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// Delete removes a department.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
