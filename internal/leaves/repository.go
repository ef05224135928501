package leaves

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pelita-hr/pelita/internal/shared"
)

// RepositoryPort defines data access methods for leave requests.
type RepositoryPort interface {
	Create(ctx context.Context, leave *Leave) error
	List(ctx context.Context) ([]Leave, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Leave, error)
	ListByManager(ctx context.Context, managerID string) ([]Leave, error)
	ListPending(ctx context.Context) ([]Leave, error)
	ListApprovedInRange(ctx context.Context, employeeID string, from, to time.Time) ([]Leave, error)
	GetByID(ctx context.Context, id string) (*Leave, error)
	Update(ctx context.Context, leave *Leave) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leaveColumns = `id, employee_id, leave_type, start_date, end_date, number_of_days, reason,
	comments, status, approved_by, approved_at, rejection_reason, created_at, updated_at`

// Create inserts a leave request.
func (r *Repository) Create(ctx context.Context, leave *Leave) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leaves (id, employee_id, leave_type, start_date, end_date, number_of_days, reason, comments, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		leave.ID, leave.EmployeeID, leave.LeaveType, leave.StartDate, leave.EndDate,
		leave.NumberOfDays, leave.Reason, leave.Comments, leave.Status)
	return row.Scan(&leave.CreatedAt, &leave.UpdatedAt)
}

// List returns all leave requests, newest first.
func (r *Repository) List(ctx context.Context) ([]Leave, error) {
	return r.query(ctx, `SELECT `+leaveColumns+` FROM leaves ORDER BY created_at DESC`)
}

// ListByEmployee returns one employee's leave requests, newest first.
func (r *Repository) ListByEmployee(ctx context.Context, employeeID string) ([]Leave, error) {
	return r.query(ctx, `SELECT `+leaveColumns+` FROM leaves WHERE employee_id = $1 ORDER BY created_at DESC`, employeeID)
}

// ListByManager returns leave requests from employees reporting to the given
// manager, resolved through the employee records.
func (r *Repository) ListByManager(ctx context.Context, managerID string) ([]Leave, error) {
	return r.query(ctx, `
		SELECT `+qualifiedLeaveColumns()+` FROM leaves l
		JOIN employees e ON e.user_id = l.employee_id
		WHERE e.manager_id = $1
		ORDER BY l.created_at DESC`, managerID)
}

// ListPending returns pending requests in submission order.
func (r *Repository) ListPending(ctx context.Context) ([]Leave, error) {
	return r.query(ctx, `SELECT `+leaveColumns+` FROM leaves WHERE status = 'pending' ORDER BY created_at ASC`)
}

// ListApprovedInRange returns approved leaves overlapping the given window.
func (r *Repository) ListApprovedInRange(ctx context.Context, employeeID string, from, to time.Time) ([]Leave, error) {
	return r.query(ctx, `
		SELECT `+leaveColumns+` FROM leaves
		WHERE employee_id = $1 AND status = 'approved' AND start_date >= $2 AND end_date <= $3
		ORDER BY start_date`, employeeID, from, to)
}

// GetByID fetches one leave request.
func (r *Repository) GetByID(ctx context.Context, id string) (*Leave, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leaveColumns+` FROM leaves WHERE id = $1`, id)
	return scanLeave(row)
}

// Update persists mutable leave fields.
func (r *Repository) Update(ctx context.Context, leave *Leave) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leaves
		SET leave_type = $2, start_date = $3, end_date = $4, number_of_days = $5, reason = $6,
			comments = $7, status = $8, approved_by = $9, approved_at = $10, rejection_reason = $11,
			updated_at = NOW()
		WHERE id = $1`,
		leave.ID, leave.LeaveType, leave.StartDate, leave.EndDate, leave.NumberOfDays, leave.Reason,
		leave.Comments, leave.Status, leave.ApprovedBy, leave.ApprovedAt, leave.RejectionReason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func qualifiedLeaveColumns() string {
	return `l.id, l.employee_id, l.leave_type, l.start_date, l.end_date, l.number_of_days, l.reason,
	l.comments, l.status, l.approved_by, l.approved_at, l.rejection_reason, l.created_at, l.updated_at`
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]Leave, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var leaves []Leave
	for rows.Next() {
		leave, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, *leave)
	}
	return leaves, rows.Err()
}

func scanLeave(row pgx.Row) (*Leave, error) {
	var leave Leave
	err := row.Scan(&leave.ID, &leave.EmployeeID, &leave.LeaveType, &leave.StartDate, &leave.EndDate,
		&leave.NumberOfDays, &leave.Reason, &leave.Comments, &leave.Status, &leave.ApprovedBy,
		&leave.ApprovedAt, &leave.RejectionReason, &leave.CreatedAt, &leave.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &leave, nil
}

var _ RepositoryPort = (*Repository)(nil)
