package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pelita-hr/pelita/internal/auth"
	"github.com/pelita-hr/pelita/internal/departments"
	"github.com/pelita-hr/pelita/internal/employees"
	"github.com/pelita-hr/pelita/internal/leaves"
	"github.com/pelita-hr/pelita/internal/observability"
	"github.com/pelita-hr/pelita/internal/payroll"
	"github.com/pelita-hr/pelita/internal/rbac"
	"github.com/pelita-hr/pelita/internal/tasks"
	"github.com/pelita-hr/pelita/internal/users"
	"github.com/pelita-hr/pelita/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Guard              *auth.Guard
	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	DepartmentsHandler *departments.Handler
	EmployeesHandler   *employees.Handler
	TasksHandler       *tasks.Handler
	LeavesHandler      *leaves.Handler
	PayrollHandler     *payroll.Handler
	PermissionsHandler *rbac.PermissionsHandler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Pelita defaults. Everything under
// the guarded groups requires a bearer token; /auth and /healthz stay public.
// User management additionally revalidates the account against the store.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Account administration gets the freshness variant: a token minted
	// before a deactivation stops working here immediately, not at expiry.
	if params.UsersHandler != nil {
		r.Group(func(r chi.Router) {
			r.Use(params.Guard.FreshMiddleware)
			r.Route("/users", params.UsersHandler.MountRoutes)
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(params.Guard.Middleware)

		if params.DepartmentsHandler != nil {
			r.Route("/departments", params.DepartmentsHandler.MountRoutes)
		}
		if params.EmployeesHandler != nil {
			r.Route("/employees", params.EmployeesHandler.MountRoutes)
		}
		if params.TasksHandler != nil {
			r.Route("/tasks", params.TasksHandler.MountRoutes)
		}
		if params.LeavesHandler != nil {
			r.Route("/leaves", params.LeavesHandler.MountRoutes)
		}
		if params.PayrollHandler != nil {
			r.Route("/payroll", params.PayrollHandler.MountRoutes)
		}
		if params.PermissionsHandler != nil {
			r.Route("/permissions", params.PermissionsHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
