package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pelita-hr/pelita/internal/app"
	"github.com/pelita-hr/pelita/internal/employees"
	jobmetrics "github.com/pelita-hr/pelita/internal/jobs"
	"github.com/pelita-hr/pelita/internal/payroll"
	"github.com/pelita-hr/pelita/internal/platform/cache"
	"github.com/pelita-hr/pelita/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}

	client, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	employeesRepo := employees.NewRepository(pool)
	employeesService := employees.NewService(employeesRepo)
	payrollRepo := payroll.NewRepository(pool)
	payrollService := payroll.NewService(payrollRepo, employeesService)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := jobmetrics.NewMetrics(nil)
	payrollJob := jobs.NewPayrollGenerateJob(payrollService, logger, metrics)
	overdueJob := jobs.NewOverdueScanJob(pool, client, logger, metrics)
	leaveResetJob := jobs.NewLeaveBalanceResetJob(redisClient, logger, metrics)

	payrollTask, err := jobs.NewPayrollGenerateTask(jobs.PayrollGeneratePayload{})
	if err != nil {
		logger.Error("build payroll task", slog.Any("error", err))
		os.Exit(1)
	}
	overdueTask, err := jobs.NewOverdueScanTask(jobs.OverdueScanPayload{})
	if err != nil {
		logger.Error("build overdue task", slog.Any("error", err))
		os.Exit(1)
	}
	leaveResetTask, err := jobs.NewLeaveBalanceResetTask()
	if err != nil {
		logger.Error("build leave reset task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPayrollGenerate, Handler: payrollJob.Handle},
			{Type: jobs.TaskOverdueScan, Handler: overdueJob.Handle},
			{Type: jobs.TaskLeaveBalanceReset, Handler: leaveResetJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			// Payroll drafts on the 25th, reminders every weekday morning,
			// balance rollover in the first hour of the new year.
			{Spec: "0 2 25 * *", Task: payrollTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 7 * * 1-5", Task: overdueTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 0 1 1 *", Task: leaveResetTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
