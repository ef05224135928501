package departments

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

// Handler exposes department endpoints.
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

// MountRoutes registers department routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin, rbac.RoleHR},
		Permissions: []string{rbac.PermDepartmentCreate},
	})).Post("/", h.handleCreate)

	r.With(h.rbac.RequirePermissions(rbac.PermDepartmentList)).Get("/", h.handleList)
	r.With(h.rbac.RequirePermissions(rbac.PermDepartmentList)).Get("/manager/{managerId}", h.handleListByManager)
	r.With(h.rbac.RequirePermissions(rbac.PermDepartmentRead)).Get("/{id}", h.handleGet)

	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin, rbac.RoleHR},
		Permissions: []string{rbac.PermDepartmentManageBudget},
	})).Get("/{id}/budget", h.handleBudget)

	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin, rbac.RoleHR},
		Permissions: []string{rbac.PermDepartmentUpdate},
	})).Put("/{id}", h.handleUpdate)

	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin},
		Permissions: []string{rbac.PermDepartmentDelete},
	})).Delete("/{id}", h.handleDelete)
}

type createDepartmentRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description *string  `json:"description,omitempty"`
	Code        *string  `json:"code,omitempty" validate:"omitempty,max=20"`
	ManagerID   *string  `json:"manager_id,omitempty" validate:"omitempty,uuid"`
	Budget      *float64 `json:"budget,omitempty" validate:"omitempty,gte=0"`
	Location    *string  `json:"location,omitempty"`
}

type updateDepartmentRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string  `json:"description,omitempty"`
	Code        *string  `json:"code,omitempty" validate:"omitempty,max=20"`
	ManagerID   *string  `json:"manager_id,omitempty" validate:"omitempty,uuid"`
	Budget      *float64 `json:"budget,omitempty" validate:"omitempty,gte=0"`
	Location    *string  `json:"location,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

type departmentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Code        *string   `json:"code,omitempty"`
	ManagerID   *string   `json:"manager_id,omitempty"`
	Budget      *float64  `json:"budget,omitempty"`
	Location    *string   `json:"location,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type budgetResponse struct {
	DepartmentID string  `json:"department_id"`
	Budget       float64 `json:"budget"`
}

func toDepartmentResponse(d Department) departmentResponse {
	return departmentResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Code:        d.Code,
		ManagerID:   d.ManagerID,
		Budget:      d.Budget,
		Location:    d.Location,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createDepartmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", httpx.ValidationDetail(err))
		return
	}

	dept, err := h.service.Create(r.Context(), DepartmentDraft{
		Name:        req.Name,
		Description: req.Description,
		Code:        req.Code,
		ManagerID:   req.ManagerID,
		Budget:      req.Budget,
		Location:    req.Location,
	})
	if err != nil {
		h.respondError(w, err, "create department")
		return
	}
	httpx.JSON(w, http.StatusCreated, toDepartmentResponse(*dept))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	depts, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, err, "list departments")
		return
	}
	responses := make([]departmentResponse, 0, len(depts))
	for _, d := range depts {
		responses = append(responses, toDepartmentResponse(d))
	}
	httpx.JSON(w, http.StatusOK, responses)
}

func (h *Handler) handleListByManager(w http.ResponseWriter, r *http.Request) {
	depts, err := h.service.ListByManager(r.Context(), chi.URLParam(r, "managerId"))
	if err != nil {
		h.respondError(w, err, "list departments by manager")
		return
	}
	responses := make([]departmentResponse, 0, len(depts))
	for _, d := range depts {
		responses = append(responses, toDepartmentResponse(d))
	}
	httpx.JSON(w, http.StatusOK, responses)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	dept, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err, "get department")
		return
	}
	httpx.JSON(w, http.StatusOK, toDepartmentResponse(*dept))
}

func (h *Handler) handleBudget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	budget, err := h.service.Budget(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get department budget")
		return
	}
	httpx.JSON(w, http.StatusOK, budgetResponse{DepartmentID: id, Budget: budget})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateDepartmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", httpx.ValidationDetail(err))
		return
	}

	dept, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), func(d *Department) {
		if req.Name != nil {
			d.Name = *req.Name
		}
		if req.Description != nil {
			d.Description = req.Description
		}
		if req.Code != nil {
			d.Code = req.Code
		}
		if req.ManagerID != nil {
			d.ManagerID = req.ManagerID
		}
		if req.Budget != nil {
			d.Budget = req.Budget
		}
		if req.Location != nil {
			d.Location = req.Location
		}
		if req.IsActive != nil {
			d.IsActive = *req.IsActive
		}
	})
	if err != nil {
		h.respondError(w, err, "update department")
		return
	}
	httpx.JSON(w, http.StatusOK, toDepartmentResponse(*dept))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err, "delete department")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "department not found")
	case errors.Is(err, httpx.ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "department name already exists")
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
