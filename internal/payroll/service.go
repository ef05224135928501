package payroll

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pelita-hr/pelita/internal/employees"
	"github.com/pelita-hr/pelita/internal/platform/httpx"
	"github.com/pelita-hr/pelita/internal/rbac"
)

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// EmployeeDirectory resolves employee records for payroll generation.
type EmployeeDirectory interface {
	List(ctx context.Context) ([]employees.Employee, error)
	GetByUserID(ctx context.Context, userID string) (*employees.Employee, error)
}

// Service handles payroll business logic.
type Service struct {
	repo      RepositoryPort
	employees EmployeeDirectory
	printer   *message.Printer
	now       func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, directory EmployeeDirectory) *Service {
	return &Service{
		repo:      repo,
		employees: directory,
		printer:   message.NewPrinter(language.English),
		now:       time.Now,
	}
}

// GenerationResult reports the outcome of a payroll run.
type GenerationResult struct {
	Period    string   `json:"period"`
	Generated int      `json:"generated"`
	Skipped   []string `json:"skipped,omitempty"`
}

// Generate creates draft records for every active salaried employee in the
// given period. Employees without a salary, and employees that already have a
// record for the period, are reported as skipped.
func (s *Service) Generate(ctx context.Context, period string) (*GenerationResult, error) {
	if !periodPattern.MatchString(period) {
		return nil, fmt.Errorf("%w: period must use the YYYY-MM form", httpx.ErrValidation)
	}
	emps, err := s.employees.List(ctx)
	if err != nil {
		return nil, err
	}
	result := &GenerationResult{Period: period}
	for _, emp := range emps {
		if !emp.IsActive {
			continue
		}
		if emp.Salary == nil {
			result.Skipped = append(result.Skipped, emp.EmployeeCode+": no salary on record")
			continue
		}
		rec := &Record{
			ID:         uuid.NewString(),
			EmployeeID: emp.ID,
			Period:     period,
			BaseSalary: *emp.Salary,
			Status:     StatusDraft,
		}
		rec.Compute()
		if err := s.repo.Create(ctx, rec); err != nil {
			if errors.Is(err, httpx.ErrDuplicate) {
				result.Skipped = append(result.Skipped, emp.EmployeeCode+": record already exists")
				continue
			}
			return nil, err
		}
		result.Generated++
	}
	return result, nil
}

// List returns records visible to the actor. Admin and HR see everything;
// everyone else sees only their own history.
func (s *Service) List(ctx context.Context, actor *rbac.Principal) ([]Record, error) {
	if actor.Role == rbac.RoleAdmin || actor.Role == rbac.RoleHR {
		return s.repo.List(ctx)
	}
	emp, err := s.employees.GetByUserID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByEmployee(ctx, emp.ID)
}

// Get fetches one record. Non-elevated actors can only read their own.
func (s *Service) Get(ctx context.Context, actor *rbac.Principal, id string) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == rbac.RoleAdmin || actor.Role == rbac.RoleHR {
		return rec, nil
	}
	emp, err := s.employees.GetByUserID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if rec.EmployeeID != emp.ID {
		return nil, fmt.Errorf("%w: you can only view your own payroll records", httpx.ErrForbidden)
	}
	return rec, nil
}

// AmountUpdate carries changes to a draft record's base figures.
type AmountUpdate struct {
	BaseSalary *float64
	Allowances *float64
	Deductions *float64
}

// Update adjusts a draft record and recomputes the derived amounts. Approved
// and paid records are immutable.
func (s *Service) Update(ctx context.Context, id string, upd AmountUpdate) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only draft records can be updated", httpx.ErrValidation)
	}
	if upd.BaseSalary != nil {
		rec.BaseSalary = *upd.BaseSalary
	}
	if upd.Allowances != nil {
		rec.Allowances = *upd.Allowances
	}
	if upd.Deductions != nil {
		rec.Deductions = *upd.Deductions
	}
	rec.Compute()
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Approve moves a draft record to approved and stamps the approver.
func (s *Service) Approve(ctx context.Context, approverID, id string) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only draft records can be approved", httpx.ErrValidation)
	}
	now := s.now()
	rec.Status = StatusApproved
	rec.ApprovedBy = &approverID
	rec.ApprovedAt = &now
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// MarkPaid moves an approved record to paid.
func (s *Service) MarkPaid(ctx context.Context, id string) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != StatusApproved {
		return nil, fmt.Errorf("%w: only approved records can be marked paid", httpx.ErrValidation)
	}
	now := s.now()
	rec.Status = StatusPaid
	rec.PaidAt = &now
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// PeriodReport summarises one period's payroll run.
type PeriodReport struct {
	Period         string  `json:"period"`
	RecordCount    int     `json:"record_count"`
	TotalGross     float64 `json:"total_gross"`
	TotalNet       float64 `json:"total_net"`
	TotalTax       float64 `json:"total_tax"`
	FormattedGross string  `json:"formatted_gross"`
	FormattedNet   string  `json:"formatted_net"`
}

// Report aggregates totals for one period.
func (s *Service) Report(ctx context.Context, period string) (*PeriodReport, error) {
	if !periodPattern.MatchString(period) {
		return nil, fmt.Errorf("%w: period must use the YYYY-MM form", httpx.ErrValidation)
	}
	recs, err := s.repo.ListByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	report := &PeriodReport{Period: period, RecordCount: len(recs)}
	for _, rec := range recs {
		report.TotalGross += rec.GrossPay
		report.TotalNet += rec.NetPay
		report.TotalTax += rec.Tax
	}
	report.FormattedGross = s.printer.Sprintf("%.2f", report.TotalGross)
	report.FormattedNet = s.printer.Sprintf("%.2f", report.TotalNet)
	return report, nil
}
