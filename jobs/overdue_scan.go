package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/pelita-hr/pelita/internal/jobs"
)

// OverdueScanJob finds open tasks past their due date and enqueues reminder
// emails to their assignees.
type OverdueScanJob struct {
	Pool    *pgxpool.Pool
	Client  *Client
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewOverdueScanJob initialises the overdue scan handler.
func NewOverdueScanJob(pool *pgxpool.Pool, client *Client, logger *slog.Logger, metrics *jobmetrics.Metrics) *OverdueScanJob {
	return &OverdueScanJob{Pool: pool, Client: client, Logger: logger, Metrics: metrics}
}

type overdueRow struct {
	Title   string
	DueDate time.Time
	Email   string
}

// Handle executes the overdue scan.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("overdue scan: handler not configured")
	}
	var payload OverdueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Limit <= 0 {
		payload.Limit = 100
	}

	logger := j.logger()
	logger.Info("starting overdue scan", slog.Int("limit", payload.Limit))

	tracker := j.Metrics.Track(TaskOverdueScan)
	rows, err := j.Pool.Query(ctx, `
		SELECT t.title, t.due_date, u.email
		FROM tasks t
		JOIN users u ON u.id = t.assigned_to
		WHERE t.due_date < NOW() AND t.status NOT IN ('done', 'cancelled') AND u.is_active
		ORDER BY t.due_date
		LIMIT $1`, payload.Limit)
	if err != nil {
		logger.Error("overdue scan query failed", slog.Any("error", err))
		return tracker.End(err)
	}
	defer rows.Close()

	var overdue []overdueRow
	for rows.Next() {
		var row overdueRow
		if err := rows.Scan(&row.Title, &row.DueDate, &row.Email); err != nil {
			return tracker.End(err)
		}
		overdue = append(overdue, row)
	}
	if err := rows.Err(); err != nil {
		return tracker.End(err)
	}

	sent := 0
	for _, row := range overdue {
		if j.Client == nil {
			break
		}
		_, err := j.Client.EnqueueSendEmail(ctx, SendEmailPayload{
			To:      row.Email,
			Subject: "Task overdue: " + row.Title,
			Body:    "The task \"" + row.Title + "\" was due on " + row.DueDate.Format("2006-01-02") + " and is still open.",
		})
		if err != nil {
			logger.Warn("reminder enqueue failed", slog.String("email", row.Email), slog.Any("error", err))
			continue
		}
		sent++
	}

	j.Metrics.AddReminders(TaskOverdueScan, sent)
	logger.Info("completed overdue scan",
		slog.Int("overdue", len(overdue)),
		slog.Int("reminders", sent),
	)
	return tracker.End(nil)
}

func (j *OverdueScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskOverdueScan))
	}
	return slog.Default().With(slog.String("job", TaskOverdueScan))
}
