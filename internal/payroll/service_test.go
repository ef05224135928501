package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pelita-hr/pelita/internal/employees"
	"github.com/pelita-hr/pelita/internal/platform/httpx"
	"github.com/pelita-hr/pelita/internal/rbac"
	"github.com/pelita-hr/pelita/internal/shared"
)

type memoryRepo struct {
	records map[string]*Record
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: map[string]*Record{}}
}

func (m *memoryRepo) Create(_ context.Context, rec *Record) error {
	for _, existing := range m.records {
		if existing.EmployeeID == rec.EmployeeID && existing.Period == rec.Period {
			return httpx.ErrDuplicate
		}
	}
	copied := *rec
	m.records[rec.ID] = &copied
	return nil
}

func (m *memoryRepo) List(context.Context) ([]Record, error) {
	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, *rec)
	}
	return out, nil
}

func (m *memoryRepo) ListByEmployee(_ context.Context, employeeID string) ([]Record, error) {
	var out []Record
	for _, rec := range m.records {
		if rec.EmployeeID == employeeID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListByPeriod(_ context.Context, period string) ([]Record, error) {
	var out []Record
	for _, rec := range m.records {
		if rec.Period == period {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (m *memoryRepo) Update(_ context.Context, rec *Record) error {
	if _, ok := m.records[rec.ID]; !ok {
		return shared.ErrNotFound
	}
	copied := *rec
	m.records[rec.ID] = &copied
	return nil
}

var _ RepositoryPort = (*memoryRepo)(nil)

type stubDirectory struct {
	list   []employees.Employee
	byUser map[string]*employees.Employee
}

func (s stubDirectory) List(context.Context) ([]employees.Employee, error) {
	return s.list, nil
}

func (s stubDirectory) GetByUserID(_ context.Context, userID string) (*employees.Employee, error) {
	emp, ok := s.byUser[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return emp, nil
}

func salary(v float64) *float64 { return &v }

func TestComputeDerivesAmounts(t *testing.T) {
	rec := Record{BaseSalary: 10000, Allowances: 2000, Deductions: 500}
	rec.Compute()
	require.InDelta(t, 12000, rec.GrossPay, 0.001)
	require.InDelta(t, 1200, rec.Tax, 0.001)
	require.InDelta(t, 10300, rec.NetPay, 0.001)
}

func TestGenerateSkipsAndDuplicates(t *testing.T) {
	repo := newMemoryRepo()
	directory := stubDirectory{list: []employees.Employee{
		{ID: "e1", EmployeeCode: "EMP001", IsActive: true, Salary: salary(18000000)},
		{ID: "e2", EmployeeCode: "EMP002", IsActive: true},
		{ID: "e3", EmployeeCode: "EMP003", IsActive: false, Salary: salary(9000000)},
	}}
	svc := NewService(repo, directory)
	ctx := context.Background()

	result, err := svc.Generate(ctx, "2026-08")
	require.NoError(t, err)
	require.Equal(t, 1, result.Generated)
	require.Len(t, result.Skipped, 1)
	require.Contains(t, result.Skipped[0], "EMP002")

	// Re-running the same period generates nothing new.
	again, err := svc.Generate(ctx, "2026-08")
	require.NoError(t, err)
	require.Equal(t, 0, again.Generated)
	require.Len(t, again.Skipped, 2)
}

func TestGenerateRejectsBadPeriod(t *testing.T) {
	svc := NewService(newMemoryRepo(), stubDirectory{})
	for _, period := range []string{"", "2026", "2026-13", "2026-00", "08-2026"} {
		_, err := svc.Generate(context.Background(), period)
		require.ErrorIs(t, err, httpx.ErrValidation, "period %q", period)
	}
}

func TestListScopesToOwnRecords(t *testing.T) {
	repo := newMemoryRepo()
	directory := stubDirectory{
		list: []employees.Employee{
			{ID: "e1", EmployeeCode: "EMP001", IsActive: true, Salary: salary(18000000)},
			{ID: "e2", EmployeeCode: "EMP002", IsActive: true, Salary: salary(12000000)},
		},
		byUser: map[string]*employees.Employee{
			"u2": {ID: "e2", EmployeeCode: "EMP002"},
		},
	}
	svc := NewService(repo, directory)
	ctx := context.Background()

	_, err := svc.Generate(ctx, "2026-08")
	require.NoError(t, err)

	all, err := svc.List(ctx, &rbac.Principal{ID: "hr-1", Role: rbac.RoleHR})
	require.NoError(t, err)
	require.Len(t, all, 2)

	own, err := svc.List(ctx, &rbac.Principal{ID: "u2", Role: rbac.RoleEmployee})
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, "e2", own[0].EmployeeID)
}

func TestLifecycleDraftApprovedPaid(t *testing.T) {
	repo := newMemoryRepo()
	directory := stubDirectory{list: []employees.Employee{
		{ID: "e1", EmployeeCode: "EMP001", IsActive: true, Salary: salary(18000000)},
	}}
	svc := NewService(repo, directory)
	stamp := time.Date(2026, 8, 25, 2, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return stamp }
	ctx := context.Background()

	_, err := svc.Generate(ctx, "2026-08")
	require.NoError(t, err)
	recs, err := svc.repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	id := recs[0].ID

	// Paying a draft is out of order.
	_, err = svc.MarkPaid(ctx, id)
	require.ErrorIs(t, err, httpx.ErrValidation)

	approved, err := svc.Approve(ctx, "hr-1", id)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, approved.Status)
	require.Equal(t, "hr-1", *approved.ApprovedBy)

	// Approved records are immutable.
	_, err = svc.Update(ctx, id, AmountUpdate{BaseSalary: salary(1)})
	require.ErrorIs(t, err, httpx.ErrValidation)
	_, err = svc.Approve(ctx, "hr-1", id)
	require.ErrorIs(t, err, httpx.ErrValidation)

	paid, err := svc.MarkPaid(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, paid.Status)
	require.True(t, paid.PaidAt.Equal(stamp))
}

func TestUpdateRecomputesDraft(t *testing.T) {
	repo := newMemoryRepo()
	rec := &Record{ID: "p1", EmployeeID: "e1", Period: "2026-08", BaseSalary: 10000, Status: StatusDraft}
	rec.Compute()
	require.NoError(t, repo.Create(context.Background(), rec))
	svc := NewService(repo, stubDirectory{})

	updated, err := svc.Update(context.Background(), "p1", AmountUpdate{
		Allowances: salary(2000),
		Deductions: salary(500),
	})
	require.NoError(t, err)
	require.InDelta(t, 12000, updated.GrossPay, 0.001)
	require.InDelta(t, 10300, updated.NetPay, 0.001)
}

func TestReportAggregatesPeriod(t *testing.T) {
	repo := newMemoryRepo()
	for i, base := range []float64{1000000, 2000000} {
		rec := &Record{ID: string(rune('a' + i)), EmployeeID: string(rune('x' + i)), Period: "2026-08", BaseSalary: base, Status: StatusDraft}
		rec.Compute()
		require.NoError(t, repo.Create(context.Background(), rec))
	}
	svc := NewService(repo, stubDirectory{})

	report, err := svc.Report(context.Background(), "2026-08")
	require.NoError(t, err)
	require.Equal(t, 2, report.RecordCount)
	require.InDelta(t, 3000000, report.TotalGross, 0.001)
	require.InDelta(t, 300000, report.TotalTax, 0.001)
	require.Equal(t, "3,000,000.00", report.FormattedGross)

	_, err = svc.Report(context.Background(), "bad")
	require.ErrorIs(t, err, httpx.ErrValidation)
}
