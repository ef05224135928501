package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/pelita-hr/pelita/internal/app"
	"github.com/pelita-hr/pelita/internal/auth"
	"github.com/pelita-hr/pelita/internal/departments"
	"github.com/pelita-hr/pelita/internal/employees"
	"github.com/pelita-hr/pelita/internal/leaves"
	"github.com/pelita-hr/pelita/internal/observability"
	"github.com/pelita-hr/pelita/internal/payroll"
	"github.com/pelita-hr/pelita/internal/platform/cache"
	"github.com/pelita-hr/pelita/internal/platform/db"
	"github.com/pelita-hr/pelita/internal/rbac"
	"github.com/pelita-hr/pelita/internal/shared"
	"github.com/pelita-hr/pelita/internal/tasks"
	"github.com/pelita-hr/pelita/internal/users"
	"github.com/pelita-hr/pelita/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	if err != nil {
		logger.Error("token issuer", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := shared.NewAuditLogger(dbpool)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, issuer, auditLogger, logger)
	authHandler := auth.NewHandler(logger, authService)
	guard := auth.NewGuard(authService, logger)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, authService)
	usersHandler := users.NewHandler(logger, usersService)

	departmentsRepo := departments.NewRepository(dbpool)
	departmentsService := departments.NewService(departmentsRepo)
	departmentsHandler := departments.NewHandler(logger, departmentsService)

	employeesRepo := employees.NewRepository(dbpool)
	employeesService := employees.NewService(employeesRepo)
	employeesHandler := employees.NewHandler(logger, employeesService)

	tasksRepo := tasks.NewRepository(dbpool)
	tasksService := tasks.NewService(tasksRepo, usersRepo)
	tasksHandler := tasks.NewHandler(logger, tasksService)

	leavesRepo := leaves.NewRepository(dbpool)
	leavesCache := leaves.NewCache(redisClient, 10*time.Minute)
	leavesService := leaves.NewService(leavesRepo, leavesCache)
	leavesHandler := leaves.NewHandler(logger, leavesService)

	payrollRepo := payroll.NewRepository(dbpool)
	payrollService := payroll.NewService(payrollRepo, employeesService)
	payrollHandler := payroll.NewHandler(logger, payrollService)

	permissionsHandler := rbac.NewPermissionsHandler(rbac.Middleware{Logger: logger})

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Guard:              guard,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		DepartmentsHandler: departmentsHandler,
		EmployeesHandler:   employeesHandler,
		TasksHandler:       tasksHandler,
		LeavesHandler:      leavesHandler,
		PayrollHandler:     payrollHandler,
		PermissionsHandler: permissionsHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
