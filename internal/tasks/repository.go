package tasks

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pelita-hr/pelita/internal/shared"
)

// RepositoryPort defines data access methods for tasks.
type RepositoryPort interface {
	Create(ctx context.Context, task *Task) error
	List(ctx context.Context) ([]Task, error)
	GetByID(ctx context.Context, id string) (*Task, error)
	ListByAssignee(ctx context.Context, userID string) ([]Task, error)
	ListForUser(ctx context.Context, userID string) ([]Task, error)
	ListByStatus(ctx context.Context, status Status) ([]Task, error)
	ListByPriority(ctx context.Context, priority Priority) ([]Task, error)
	ListOverdue(ctx context.Context) ([]Task, error)
	CountByColumn(ctx context.Context, column string) (map[string]int, error)
	CountAll(ctx context.Context) (int, error)
	CountOverdue(ctx context.Context) (int, error)
	Update(ctx context.Context, task *Task) error
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

const taskColumns = `id, title, description, priority, status, due_date, completed_date, assigned_to,
	created_by, project_id, department_id, estimated_hours, actual_hours, comments, tags,
	created_at, updated_at`

// Create inserts a task.
func (r *Repository) Create(ctx context.Context, task *Task) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, title, description, priority, status, due_date, assigned_to, created_by,
			project_id, department_id, estimated_hours, actual_hours, comments, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`,
		task.ID, task.Title, task.Description, task.Priority, task.Status, task.DueDate, task.AssignedTo,
		task.CreatedBy, task.ProjectID, task.DepartmentID, task.EstimatedHours, task.ActualHours,
		task.Comments, task.Tags)
	return row.Scan(&task.CreatedAt, &task.UpdatedAt)
}

// List returns all tasks, newest first.
func (r *Repository) List(ctx context.Context) ([]Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC`)
}

// GetByID fetches one task.
func (r *Repository) GetByID(ctx context.Context, id string) (*Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

// ListByAssignee returns tasks assigned to the given user.
func (r *Repository) ListByAssignee(ctx context.Context, userID string) ([]Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE assigned_to = $1 ORDER BY created_at DESC`, userID)
}

// ListForUser returns tasks the user is assigned to or created.
func (r *Repository) ListForUser(ctx context.Context, userID string) ([]Task, error) {
	return r.query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE assigned_to = $1 OR created_by = $1
		ORDER BY created_at DESC`, userID)
}

// ListByStatus returns tasks in the given status.
func (r *Repository) ListByStatus(ctx context.Context, status Status) ([]Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE status = $1 ORDER BY created_at DESC`, status)
}

// ListByPriority returns tasks at the given priority.
func (r *Repository) ListByPriority(ctx context.Context, priority Priority) ([]Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE priority = $1 ORDER BY created_at DESC`, priority)
}

// ListOverdue returns open tasks whose due date has passed.
func (r *Repository) ListOverdue(ctx context.Context) ([]Task, error) {
	return r.query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE due_date < NOW() AND status NOT IN ('done', 'cancelled')
		ORDER BY due_date`)
}

// CountByColumn groups task counts by the named column. Only status and
// priority are accepted; the column name is never taken from user input.
func (r *Repository) CountByColumn(ctx context.Context, column string) (map[string]int, error) {
	if column != "status" && column != "priority" {
		return nil, errors.New("tasks: unsupported count column " + column)
	}
	rows, err := r.pool.Query(ctx, `SELECT `+column+`, COUNT(*) FROM tasks GROUP BY `+column)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}
	return counts, rows.Err()
}

// CountAll returns the total task count.
func (r *Repository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&count)
	return count, err
}

// CountOverdue returns the number of open tasks past their due date.
func (r *Repository) CountOverdue(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM tasks
		WHERE due_date < NOW() AND status NOT IN ('done', 'cancelled')`).Scan(&count)
	return count, err
}

// Update persists mutable task fields.
func (r *Repository) Update(ctx context.Context, task *Task) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, priority = $4, status = $5, due_date = $6, completed_date = $7,
			assigned_to = $8, estimated_hours = $9, actual_hours = $10, comments = $11, tags = $12,
			updated_at = NOW()
		WHERE id = $1`,
		task.ID, task.Title, task.Description, task.Priority, task.Status, task.DueDate,
		task.CompletedDate, task.AssignedTo, task.EstimatedHours, task.ActualHours, task.Comments, task.Tags)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a task record.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]Task, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tasks []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func scanTask(row pgx.Row) (*Task, error) {
	var task Task
	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.Priority, &task.Status,
		&task.DueDate, &task.CompletedDate, &task.AssignedTo, &task.CreatedBy, &task.ProjectID,
		&task.DepartmentID, &task.EstimatedHours, &task.ActualHours, &task.Comments, &task.Tags,
		&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

var _ RepositoryPort = (*Repository)(nil)
