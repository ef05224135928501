package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	jobmetrics "github.com/pelita-hr/pelita/internal/jobs"
)

// LeaveBalanceResetJob drops every cached leave balance at the start of a new
// year. Balances are recomputed from approved leaves on the next read, so the
// rollover only has to clear the cache.
type LeaveBalanceResetJob struct {
	Redis   *redis.Client
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLeaveBalanceResetJob initialises the balance rollover handler.
func NewLeaveBalanceResetJob(client *redis.Client, logger *slog.Logger, metrics *jobmetrics.Metrics) *LeaveBalanceResetJob {
	return &LeaveBalanceResetJob{Redis: client, Logger: logger, Metrics: metrics}
}

// Handle executes the rollover.
func (j *LeaveBalanceResetJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Redis == nil {
		return errors.New("leave balance reset: handler not configured")
	}
	logger := j.logger()
	logger.Info("starting leave balance rollover")

	tracker := j.Metrics.Track(TaskLeaveBalanceReset)
	dropped := 0
	iter := j.Redis.Scan(ctx, 0, "leaves:balance:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := j.Redis.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("drop cached balance", slog.String("key", iter.Val()), slog.Any("error", err))
			continue
		}
		dropped++
	}
	if err := iter.Err(); err != nil {
		logger.Error("balance scan failed", slog.Any("error", err))
		return tracker.End(err)
	}

	logger.Info("completed leave balance rollover", slog.Int("dropped", dropped))
	return tracker.End(nil)
}

func (j *LeaveBalanceResetJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLeaveBalanceReset))
	}
	return slog.Default().With(slog.String("job", TaskLeaveBalanceReset))
}
