package payroll

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pelita-hr/pelita/internal/platform/httpx"
	"github.com/pelita-hr/pelita/internal/shared"
)

// RepositoryPort defines data access methods for payroll records.
type RepositoryPort interface {
	Create(ctx context.Context, rec *Record) error
	List(ctx context.Context) ([]Record, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Record, error)
	ListByPeriod(ctx context.Context, period string) ([]Record, error)
	GetByID(ctx context.Context, id string) (*Record, error)
	Update(ctx context.Context, rec *Record) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const payrollColumns = `id, employee_id, period, base_salary, allowances, deductions, tax, gross_pay,
	net_pay, status, approved_by, approved_at, paid_at, created_at, updated_at`

// Create inserts a payroll record. One record per employee per period.
func (r *Repository) Create(ctx context.Context, rec *Record) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO payroll_records (id, employee_id, period, base_salary, allowances, deductions, tax,
			gross_pay, net_pay, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		rec.ID, rec.EmployeeID, rec.Period, rec.BaseSalary, rec.Allowances, rec.Deductions, rec.Tax,
		rec.GrossPay, rec.NetPay, rec.Status)
	if err := row.Scan(&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return httpx.ErrDuplicate
		}
		return err
	}
	return nil
}

// List returns all payroll records, newest period first.
func (r *Repository) List(ctx context.Context) ([]Record, error) {
	return r.query(ctx, `SELECT `+payrollColumns+` FROM payroll_records ORDER BY period DESC, created_at DESC`)
}

// ListByEmployee returns one employee's payroll history.
func (r *Repository) ListByEmployee(ctx context.Context, employeeID string) ([]Record, error) {
	return r.query(ctx, `SELECT `+payrollColumns+` FROM payroll_records WHERE employee_id = $1 ORDER BY period DESC`, employeeID)
}

// ListByPeriod returns all records for one period.
func (r *Repository) ListByPeriod(ctx context.Context, period string) ([]Record, error) {
	return r.query(ctx, `SELECT `+payrollColumns+` FROM payroll_records WHERE period = $1 ORDER BY employee_id`, period)
}

// GetByID fetches one payroll record.
func (r *Repository) GetByID(ctx context.Context, id string) (*Record, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+payrollColumns+` FROM payroll_records WHERE id = $1`, id)
	return scanRecord(row)
}

// Update persists mutable payroll fields.
func (r *Repository) Update(ctx context.Context, rec *Record) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payroll_records
		SET base_salary = $2, allowances = $3, deductions = $4, tax = $5, gross_pay = $6, net_pay = $7,
			status = $8, approved_by = $9, approved_at = $10, paid_at = $11, updated_at = NOW()
		WHERE id = $1`,
		rec.ID, rec.BaseSalary, rec.Allowances, rec.Deductions, rec.Tax, rec.GrossPay, rec.NetPay,
		rec.Status, rec.ApprovedBy, rec.ApprovedAt, rec.PaidAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]Record, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.EmployeeID, &rec.Period, &rec.BaseSalary, &rec.Allowances,
		&rec.Deductions, &rec.Tax, &rec.GrossPay, &rec.NetPay, &rec.Status, &rec.ApprovedBy,
		&rec.ApprovedAt, &rec.PaidAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

var _ RepositoryPort = (*Repository)(nil)
