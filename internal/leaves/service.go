package leaves

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pelita-hr/pelita/internal/platform/httpx"
	"github.com/pelita-hr/pelita/internal/rbac"
)

// Service handles leave request business logic.
type Service struct {
	repo  RepositoryPort
	cache *Cache
	now   func() time.Time
}

// NewService builds a Service instance. The cache may be nil.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// LeaveDraft carries fields for a new leave request.
type LeaveDraft struct {
	EmployeeID   string
	LeaveType    Type
	StartDate    time.Time
	EndDate      time.Time
	NumberOfDays int
	Reason       *string
	Comments     *string
}

// Create submits a leave request. Employees may only file for themselves;
// elevated roles may file on behalf of others. Requests start pending.
func (s *Service) Create(ctx context.Context, actor *rbac.Principal, draft LeaveDraft) (*Leave, error) {
	if !draft.StartDate.Before(draft.EndDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", httpx.ErrValidation)
	}
	if draft.EmployeeID != actor.ID && actor.Role == rbac.RoleEmployee {
		return nil, fmt.Errorf("%w: you can only create leave requests for yourself", httpx.ErrForbidden)
	}
	leave := &Leave{
		ID:           uuid.NewString(),
		EmployeeID:   draft.EmployeeID,
		LeaveType:    draft.LeaveType,
		StartDate:    draft.StartDate,
		EndDate:      draft.EndDate,
		NumberOfDays: draft.NumberOfDays,
		Reason:       draft.Reason,
		Comments:     draft.Comments,
		Status:       StatusPending,
	}
	if err := s.repo.Create(ctx, leave); err != nil {
		return nil, err
	}
	return leave, nil
}

// List returns requests visible to the actor. Admin and HR see everything,
// managers see their reports' requests, employees see their own.
func (s *Service) List(ctx context.Context, actor *rbac.Principal) ([]Leave, error) {
	switch actor.Role {
	case rbac.RoleAdmin, rbac.RoleHR:
		return s.repo.List(ctx)
	case rbac.RoleManager:
		return s.repo.ListByManager(ctx, actor.ID)
	default:
		return s.repo.ListByEmployee(ctx, actor.ID)
	}
}

// Get fetches one request. Employees can only read their own.
func (s *Service) Get(ctx context.Context, actor *rbac.Principal, id string) (*Leave, error) {
	leave, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == rbac.RoleEmployee && leave.EmployeeID != actor.ID {
		return nil, fmt.Errorf("%w: you can only view your own leave requests", httpx.ErrForbidden)
	}
	return leave, nil
}

// Pending returns the pending approval queue in submission order.
func (s *Service) Pending(ctx context.Context) ([]Leave, error) {
	return s.repo.ListPending(ctx)
}

// Resolution carries an approve or reject verdict.
type Resolution struct {
	Status          Status
	Comments        *string
	RejectionReason *string
}

// Resolve approves or rejects a pending request and stamps the approver.
func (s *Service) Resolve(ctx context.Context, approverID, id string, res Resolution) (*Leave, error) {
	if res.Status != StatusApproved && res.Status != StatusRejected {
		return nil, fmt.Errorf("%w: resolution status must be approved or rejected", httpx.ErrValidation)
	}
	leave, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if leave.Status != StatusPending {
		return nil, fmt.Errorf("%w: leave request is not pending approval", httpx.ErrValidation)
	}
	now := s.now()
	leave.Status = res.Status
	leave.ApprovedBy = &approverID
	leave.ApprovedAt = &now
	leave.Comments = res.Comments
	if res.Status == StatusRejected {
		leave.RejectionReason = res.RejectionReason
	}
	if err := s.repo.Update(ctx, leave); err != nil {
		return nil, err
	}
	_ = s.cache.InvalidateBalance(ctx, leave.EmployeeID, leave.StartDate.Year())
	return leave, nil
}

// LeaveUpdate carries partial changes for a pending request.
type LeaveUpdate struct {
	LeaveType    *Type
	StartDate    *time.Time
	EndDate      *time.Time
	NumberOfDays *int
	Reason       *string
	Comments     *string
}

// Update modifies a request. Only the owner can update, and only while the
// request is still pending.
func (s *Service) Update(ctx context.Context, actorID, id string, upd LeaveUpdate) (*Leave, error) {
	leave, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if leave.Status != StatusPending {
		return nil, fmt.Errorf("%w: cannot update leave request that is not pending", httpx.ErrValidation)
	}
	if leave.EmployeeID != actorID {
		return nil, fmt.Errorf("%w: you can only update your own leave requests", httpx.ErrForbidden)
	}
	if upd.LeaveType != nil {
		leave.LeaveType = *upd.LeaveType
	}
	if upd.StartDate != nil {
		leave.StartDate = *upd.StartDate
	}
	if upd.EndDate != nil {
		leave.EndDate = *upd.EndDate
	}
	if !leave.StartDate.Before(leave.EndDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", httpx.ErrValidation)
	}
	if upd.NumberOfDays != nil {
		leave.NumberOfDays = *upd.NumberOfDays
	}
	if upd.Reason != nil {
		leave.Reason = upd.Reason
	}
	if upd.Comments != nil {
		leave.Comments = upd.Comments
	}
	if err := s.repo.Update(ctx, leave); err != nil {
		return nil, err
	}
	return leave, nil
}

// Cancel withdraws a pending request. Only the owner can cancel.
func (s *Service) Cancel(ctx context.Context, actorID, id string) (*Leave, error) {
	leave, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if leave.EmployeeID != actorID {
		return nil, fmt.Errorf("%w: you can only cancel your own leave requests", httpx.ErrForbidden)
	}
	if leave.Status != StatusPending {
		return nil, fmt.Errorf("%w: cannot cancel leave request that is not pending", httpx.ErrValidation)
	}
	leave.Status = StatusCancelled
	if err := s.repo.Update(ctx, leave); err != nil {
		return nil, err
	}
	_ = s.cache.InvalidateBalance(ctx, leave.EmployeeID, leave.StartDate.Year())
	return leave, nil
}

// BalanceFor computes the current-year leave balance, served from cache when
// one is configured.
func (s *Service) BalanceFor(ctx context.Context, employeeID string) (*Balance, error) {
	year := s.now().Year()
	return s.cache.FetchBalance(ctx, employeeID, year, func(ctx context.Context) (*Balance, error) {
		return s.computeBalance(ctx, employeeID, year)
	})
}

func (s *Service) computeBalance(ctx context.Context, employeeID string, year int) (*Balance, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	approved, err := s.repo.ListApprovedInRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	used := 0
	for _, leave := range approved {
		used += leave.NumberOfDays
	}
	remaining := AnnualLeaveLimit - used
	if remaining < 0 {
		remaining = 0
	}
	return &Balance{
		TotalDays:     AnnualLeaveLimit,
		UsedDays:      used,
		RemainingDays: remaining,
		Leaves:        approved,
	}, nil
}
