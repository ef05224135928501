package employees

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pelita-hr/pelita/internal/platform/httpx"
	"github.com/pelita-hr/pelita/internal/rbac"
	"github.com/pelita-hr/pelita/internal/shared"
)

// Handler exposes employee record endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		rbac:      rbac.Middleware{Logger: logger},
		validator: validator.New(),
	}
}

// MountRoutes registers employee routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin, rbac.RoleHR},
		Permissions: []string{rbac.PermEmployeeCreate},
	})).Post("/", h.handleCreate)

	r.With(h.rbac.RequirePermissions(rbac.PermEmployeeList)).Get("/", h.handleList)
	r.With(h.rbac.RequirePermissions(rbac.PermEmployeeRead)).Get("/me", h.handleMe)
	r.With(h.rbac.RequirePermissions(rbac.PermEmployeeRead)).Get("/{id}", h.handleGet)

	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin, rbac.RoleHR},
		Permissions: []string{rbac.PermEmployeeUpdate},
	})).Put("/{id}", h.handleUpdate)

	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin, rbac.RoleHR},
		Permissions: []string{rbac.PermEmployeeUpdateSalary},
	})).Put("/{id}/salary", h.handleUpdateSalary)

	r.With(h.rbac.RequirePermissions(rbac.PermEmployeeUpdatePerformance)).
		Put("/{id}/performance", h.handleUpdatePerformance)

	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin, rbac.RoleHR},
		Permissions: []string{rbac.PermEmployeeDelete},
	})).Delete("/{id}", h.handleDelete)
}

type createEmployeeRequest struct {
	FirstName   string     `json:"first_name" validate:"required,max=100"`
	LastName    string     `json:"last_name" validate:"required,max=100"`
	Email       string     `json:"email" validate:"required,email"`
	Phone       *string    `json:"phone,omitempty" validate:"omitempty,max=30"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	HireDate    *time.Time `json:"hire_date,omitempty"`
	Department  *string    `json:"department,omitempty"`
	Position    *string    `json:"position,omitempty"`
	Salary      *float64   `json:"salary,omitempty" validate:"omitempty,gte=0"`
	ManagerID   *string    `json:"manager_id,omitempty" validate:"omitempty,uuid"`
	UserID      *string    `json:"user_id,omitempty" validate:"omitempty,uuid"`
}

type updateEmployeeRequest struct {
	FirstName  *string    `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName   *string    `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Email      *string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string    `json:"phone,omitempty" validate:"omitempty,max=30"`
	HireDate   *time.Time `json:"hire_date,omitempty"`
	Department *string    `json:"department,omitempty"`
	Position   *string    `json:"position,omitempty"`
	ManagerID  *string    `json:"manager_id,omitempty" validate:"omitempty,uuid"`
	IsActive   *bool      `json:"is_active,omitempty"`
}

type updateSalaryRequest struct {
	Salary float64 `json:"salary" validate:"gte=0"`
}

type updatePerformanceRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

type employeeResponse struct {
	ID                string     `json:"id"`
	EmployeeCode      string     `json:"employee_code"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Email             string     `json:"email"`
	Phone             *string    `json:"phone,omitempty"`
	DateOfBirth       *time.Time `json:"date_of_birth,omitempty"`
	HireDate          *time.Time `json:"hire_date,omitempty"`
	Department        *string    `json:"department,omitempty"`
	Position          *string    `json:"position,omitempty"`
	Salary            *float64   `json:"salary,omitempty"`
	PerformanceRating *int       `json:"performance_rating,omitempty"`
	IsActive          bool       `json:"is_active"`
	ManagerID         *string    `json:"manager_id,omitempty"`
	UserID            *string    `json:"user_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// toEmployeeResponse builds the response view. The salary field is omitted
// unless the principal holds the salary permission or the record is their own.
func toEmployeeResponse(e Employee, principal *rbac.Principal) employeeResponse {
	resp := employeeResponse{
		ID:                e.ID,
		EmployeeCode:      e.EmployeeCode,
		FirstName:         e.FirstName,
		LastName:          e.LastName,
		Email:             e.Email,
		Phone:             e.Phone,
		DateOfBirth:       e.DateOfBirth,
		HireDate:          e.HireDate,
		Department:        e.Department,
		Position:          e.Position,
		PerformanceRating: e.PerformanceRating,
		IsActive:          e.IsActive,
		ManagerID:         e.ManagerID,
		UserID:            e.UserID,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
	ownRecord := e.UserID != nil && principal != nil && *e.UserID == principal.ID
	canViewSalary := principal != nil && rbac.HasAllPermissions(principal.Permissions, []string{rbac.PermEmployeeViewSalary})
	if ownRecord || canViewSalary {
		resp.Salary = e.Salary
	}
	return resp
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createEmployeeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", httpx.ValidationDetail(err))
		return
	}

	emp, err := h.service.Create(r.Context(), EmployeeDraft{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		HireDate:    req.HireDate,
		Department:  req.Department,
		Position:    req.Position,
		Salary:      req.Salary,
		ManagerID:   req.ManagerID,
		UserID:      req.UserID,
	})
	if err != nil {
		h.respondError(w, err, "create employee")
		return
	}
	httpx.JSON(w, http.StatusCreated, toEmployeeResponse(*emp, rbac.PrincipalFromContext(r.Context())))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	emps, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, err, "list employees")
		return
	}
	principal := rbac.PrincipalFromContext(r.Context())
	responses := make([]employeeResponse, 0, len(emps))
	for _, e := range emps {
		responses = append(responses, toEmployeeResponse(e, principal))
	}
	httpx.JSON(w, http.StatusOK, responses)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal := rbac.PrincipalFromContext(r.Context())
	emp, err := h.service.GetByUserID(r.Context(), principal.ID)
	if err != nil {
		h.respondError(w, err, "get own employee record")
		return
	}
	httpx.JSON(w, http.StatusOK, toEmployeeResponse(*emp, principal))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	emp, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err, "get employee")
		return
	}
	httpx.JSON(w, http.StatusOK, toEmployeeResponse(*emp, rbac.PrincipalFromContext(r.Context())))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateEmployeeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", httpx.ValidationDetail(err))
		return
	}

	emp, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), func(e *Employee) {
		if req.FirstName != nil {
			e.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			e.LastName = *req.LastName
		}
		if req.Email != nil {
			e.Email = *req.Email
		}
		if req.Phone != nil {
			e.Phone = req.Phone
		}
		if req.HireDate != nil {
			e.HireDate = req.HireDate
		}
		if req.Department != nil {
			e.Department = req.Department
		}
		if req.Position != nil {
			e.Position = req.Position
		}
		if req.ManagerID != nil {
			e.ManagerID = req.ManagerID
		}
		if req.IsActive != nil {
			e.IsActive = *req.IsActive
		}
	})
	if err != nil {
		h.respondError(w, err, "update employee")
		return
	}
	httpx.JSON(w, http.StatusOK, toEmployeeResponse(*emp, rbac.PrincipalFromContext(r.Context())))
}

func (h *Handler) handleUpdateSalary(w http.ResponseWriter, r *http.Request) {
	var req updateSalaryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", httpx.ValidationDetail(err))
		return
	}

	emp, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), func(e *Employee) {
		e.Salary = &req.Salary
	})
	if err != nil {
		h.respondError(w, err, "update salary")
		return
	}
	httpx.JSON(w, http.StatusOK, toEmployeeResponse(*emp, rbac.PrincipalFromContext(r.Context())))
}

func (h *Handler) handleUpdatePerformance(w http.ResponseWriter, r *http.Request) {
	var req updatePerformanceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", httpx.ValidationDetail(err))
		return
	}

	emp, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), func(e *Employee) {
		e.PerformanceRating = &req.Rating
	})
	if err != nil {
		h.respondError(w, err, "update performance")
		return
	}
	httpx.JSON(w, http.StatusOK, toEmployeeResponse(*emp, rbac.PrincipalFromContext(r.Context())))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err, "delete employee")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "employee not found")
	case errors.Is(err, httpx.ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "employee email already exists")
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
