package employees

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service handles employee record business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// EmployeeDraft carries fields for a new employee record.
type EmployeeDraft struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       *string
	DateOfBirth *time.Time
	HireDate    *time.Time
	Department  *string
	Position    *string
	Salary      *float64
	ManagerID   *string
	UserID      *string
}

// Create stores a new employee record with a generated employee code.
func (s *Service) Create(ctx context.Context, draft EmployeeDraft) (*Employee, error) {
	code, err := s.repo.NextEmployeeCode(ctx)
	if err != nil {
		return nil, err
	}
	emp := &Employee{
		ID:           uuid.NewString(),
		EmployeeCode: code,
		FirstName:    draft.FirstName,
		LastName:     draft.LastName,
		Email:        draft.Email,
		Phone:        draft.Phone,
		DateOfBirth:  draft.DateOfBirth,
		HireDate:     draft.HireDate,
		Department:   draft.Department,
		Position:     draft.Position,
		Salary:       draft.Salary,
		ManagerID:    draft.ManagerID,
		UserID:       draft.UserID,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}

// List returns all employee records.
func (s *Service) List(ctx context.Context) ([]Employee, error) {
	return s.repo.List(ctx)
}

// Get fetches one employee record.
func (s *Service) Get(ctx context.Context, id string) (*Employee, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByUserID fetches the record linked to a login account.
func (s *Service) GetByUserID(ctx context.Context, userID string) (*Employee, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// Update applies partial changes to an employee record.
func (s *Service) Update(ctx context.Context, id string, apply func(*Employee)) (*Employee, error) {
	emp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(emp)
	if err := s.repo.Update(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}

// Delete removes an employee record.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
