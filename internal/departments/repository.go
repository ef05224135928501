package departments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pelita-hr/pelita/internal/platform/httpx"
	"github.com/pelita-hr/pelita/internal/shared"
)

// RepositoryPort defines data access methods for departments.
type RepositoryPort interface {
	Create(ctx context.Context, dept *Department) error
	List(ctx context.Context) ([]Department, error)
	GetByID(ctx context.Context, id string) (*Department, error)
	ListByManager(ctx context.Context, managerID string) ([]Department, error)
	GetBudget(ctx context.Context, id string) (float64, error)
	Update(ctx context.Context, dept *Department) error
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

const deptColumns = `id, name, description, code, manager_id, budget, location, is_active, created_at, updated_at`

// Create inserts a department. Department names are unique.
func (r *Repository) Create(ctx context.Context, dept *Department) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO departments (id, name, description, code, manager_id, budget, location, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		dept.ID, dept.Name, dept.Description, dept.Code, dept.ManagerID, dept.Budget, dept.Location, dept.IsActive)
	if err := row.Scan(&dept.CreatedAt, &dept.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return httpx.ErrDuplicate
		}
		return err
	}
	return nil
}

// List returns all departments ordered by name.
func (r *Repository) List(ctx context.Context) ([]Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+deptColumns+` FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDepartments(rows)
}

// GetByID fetches one department.
func (r *Repository) GetByID(ctx context.Context, id string) (*Department, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+deptColumns+` FROM departments WHERE id = $1`, id)
	return scanDepartment(row)
}

// ListByManager returns departments managed by the given user.
func (r *Repository) ListByManager(ctx context.Context, managerID string) ([]Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+deptColumns+` FROM departments WHERE manager_id = $1 ORDER BY name`, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDepartments(rows)
}

// GetBudget returns the allocated budget, zero when none is set.
func (r *Repository) GetBudget(ctx context.Context, id string) (float64, error) {
	var budget *float64
	err := r.pool.QueryRow(ctx, `SELECT budget FROM departments WHERE id = $1`, id).Scan(&budget)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	if budget == nil {
		return 0, nil
	}
	return *budget, nil
}

// Update persists mutable department fields.
func (r *Repository) Update(ctx context.Context, dept *Department) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE departments
		SET name = $2, description = $3, code = $4, manager_id = $5, budget = $6, location = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1`,
		dept.ID, dept.Name, dept.Description, dept.Code, dept.ManagerID, dept.Budget, dept.Location, dept.IsActive)
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

// Delete removes a department record.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func collectDepartments(rows pgx.Rows) ([]Department, error) {
	var depts []Department
	for rows.Next() {
		dept, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		depts = append(depts, *dept)
	}
	return depts, rows.Err()
}

func scanDepartment(row pgx.Row) (*Department, error) {
	var dept Department
	err := row.Scan(&dept.ID, &dept.Name, &dept.Description, &dept.Code, &dept.ManagerID,
		&dept.Budget, &dept.Location, &dept.IsActive, &dept.CreatedAt, &dept.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &dept, nil
}

var _ RepositoryPort = (*Repository)(nil)
