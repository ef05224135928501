package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/pelita-hr/pelita/internal/jobs"
	"github.com/pelita-hr/pelita/internal/payroll"
)

// PayrollGenerateJob produces draft payroll records for a period.
type PayrollGenerateJob struct {
	Service *payroll.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewPayrollGenerateJob initialises the payroll generation handler.
func NewPayrollGenerateJob(service *payroll.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *PayrollGenerateJob {
	return &PayrollGenerateJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the payroll generation run.
func (j *PayrollGenerateJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("payroll generate: handler not configured")
	}
	var payload PayrollGeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	period := payload.Period
	if period == "" {
		period = j.now().Format("2006-01")
	}

	logger := j.logger().With(slog.String("period", period))
	logger.Info("starting payroll generation")

	tracker := j.Metrics.Track(TaskPayrollGenerate)
	result, err := j.Service.Generate(ctx, period)
	if err != nil {
		logger.Error("payroll generation failed", slog.Any("error", err))
		return tracker.End(err)
	}
	_ = tracker.End(nil)

	logger.Info("completed payroll generation",
		slog.Int("generated", result.Generated),
		slog.Int("skipped", len(result.Skipped)),
	)
	return nil
}

func (j *PayrollGenerateJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskPayrollGenerate))
	}
	return slog.Default().With(slog.String("job", TaskPayrollGenerate))
}

func (j *PayrollGenerateJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
