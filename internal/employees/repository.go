package employees

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pelita-hr/pelita/internal/platform/httpx"
	"github.com/pelita-hr/pelita/internal/shared"
)

// RepositoryPort defines data access methods for employee records.
type RepositoryPort interface {
	Create(ctx context.Context, emp *Employee) error
	List(ctx context.Context) ([]Employee, error)
	GetByID(ctx context.Context, id string) (*Employee, error)
	GetByUserID(ctx context.Context, userID string) (*Employee, error)
	NextEmployeeCode(ctx context.Context) (string, error)
	Update(ctx context.Context, emp *Employee) error
	Delete(ctx context.Context, id string) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const employeeColumns = `id, employee_code, first_name, last_name, email, phone, date_of_birth,
	hire_date, department, position, salary, performance_rating, is_active, manager_id, user_id,
	created_at, updated_at`

// Create inserts an employee record. Emails are unique.
func (r *Repository) Create(ctx context.Context, emp *Employee) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO employees (id, employee_code, first_name, last_name, email, phone, date_of_birth,
			hire_date, department, position, salary, performance_rating, is_active, manager_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at`,
		emp.ID, emp.EmployeeCode, emp.FirstName, emp.LastName, emp.Email, emp.Phone, emp.DateOfBirth,
		emp.HireDate, emp.Department, emp.Position, emp.Salary, emp.PerformanceRating, emp.IsActive,
		emp.ManagerID, emp.UserID)
	if err := row.Scan(&emp.CreatedAt, &emp.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return httpx.ErrDuplicate
		}
		return err
	}
	return nil
}

// List returns all employee records ordered by employee code.
func (r *Repository) List(ctx context.Context) ([]Employee, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY employee_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var emps []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		emps = append(emps, *emp)
	}
	return emps, rows.Err()
}

// GetByID fetches one employee record.
func (r *Repository) GetByID(ctx context.Context, id string) (*Employee, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
	return scanEmployee(row)
}

// GetByUserID fetches the employee record linked to a login account.
func (r *Repository) GetByUserID(ctx context.Context, userID string) (*Employee, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE user_id = $1`, userID)
	return scanEmployee(row)
}

// NextEmployeeCode produces the next sequential code in the EMP001 style.
func (r *Repository) NextEmployeeCode(ctx context.Context) (string, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&count); err != nil {
		return "", err
	}
	return fmt.Sprintf("EMP%03d", count+1), nil
}

// Update persists mutable employee fields.
func (r *Repository) Update(ctx context.Context, emp *Employee) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE employees
		SET first_name = $2, last_name = $3, email = $4, phone = $5, date_of_birth = $6, hire_date = $7,
			department = $8, position = $9, salary = $10, performance_rating = $11, is_active = $12,
			manager_id = $13, updated_at = NOW()
		WHERE id = $1`,
		emp.ID, emp.FirstName, emp.LastName, emp.Email, emp.Phone, emp.DateOfBirth, emp.HireDate,
		emp.Department, emp.Position, emp.Salary, emp.PerformanceRating, emp.IsActive, emp.ManagerID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return httpx.ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an employee record.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanEmployee(row pgx.Row) (*Employee, error) {
	var emp Employee
	err := row.Scan(&emp.ID, &emp.EmployeeCode, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Phone,
		&emp.DateOfBirth, &emp.HireDate, &emp.Department, &emp.Position, &emp.Salary,
		&emp.PerformanceRating, &emp.IsActive, &emp.ManagerID, &emp.UserID, &emp.CreatedAt, &emp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &emp, nil
}

var _ RepositoryPort = (*Repository)(nil)
