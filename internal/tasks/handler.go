package tasks

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

// Handler exposes task endpoints.
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

// MountRoutes registers task routes. Named collection routes are declared
// before the {id} route so chi never treats them as IDs.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequirePermissions(rbac.PermTaskCreate)).Post("/", h.handleCreate)
	r.With(h.rbac.RequirePermissions(rbac.PermTaskList)).Get("/", h.handleList)
	r.With(h.rbac.RequirePermissions(rbac.PermTaskList)).Get("/my", h.handleMy)
	r.With(h.rbac.RequirePermissions(rbac.PermTaskList)).Get("/overdue", h.handleOverdue)
	r.With(h.rbac.RequirePermissions(rbac.PermTaskList)).Get("/status/{status}", h.handleByStatus)
	r.With(h.rbac.RequirePermissions(rbac.PermTaskList)).Get("/priority/{priority}", h.handleByPriority)

	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin, rbac.RoleHR, rbac.RoleManager},
		Permissions: []string{rbac.PermTaskList},
	})).Get("/statistics", h.handleStatistics)

	r.With(h.rbac.RequirePermissions(rbac.PermTaskRead)).Get("/{id}", h.handleGet)
	r.With(h.rbac.RequirePermissions(rbac.PermTaskUpdate)).Put("/{id}", h.handleUpdate)
	r.With(h.rbac.RequirePermissions(rbac.PermTaskUpdate)).Put("/{id}/status", h.handleUpdateStatus)

	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin, rbac.RoleHR, rbac.RoleManager},
		Permissions: []string{rbac.PermTaskAssign},
	})).Put("/{id}/assign", h.handleAssign)

	r.With(h.rbac.RequirePermissions(rbac.PermTaskDelete)).Delete("/{id}", h.handleDelete)
}

type createTaskRequest struct {
	Title          string     `json:"title" validate:"required,max=300"`
	Description    *string    `json:"description,omitempty"`
	Priority       string     `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	AssignedTo     *string    `json:"assigned_to,omitempty" validate:"omitempty,uuid"`
	ProjectID      *string    `json:"project_id,omitempty" validate:"omitempty,uuid"`
	DepartmentID   *string    `json:"department_id,omitempty" validate:"omitempty,uuid"`
	EstimatedHours int        `json:"estimated_hours,omitempty" validate:"gte=0"`
	Tags           []string   `json:"tags,omitempty"`
}

type updateTaskRequest struct {
	Title          *string    `json:"title,omitempty" validate:"omitempty,max=300"`
	Description    *string    `json:"description,omitempty"`
	Priority       *string    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	Status         *string    `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress review done cancelled"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	AssignedTo     *string    `json:"assigned_to,omitempty" validate:"omitempty,uuid"`
	EstimatedHours *int       `json:"estimated_hours,omitempty" validate:"omitempty,gte=0"`
	ActualHours    *int       `json:"actual_hours,omitempty" validate:"omitempty,gte=0"`
	Comments       *string    `json:"comments,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress review done cancelled"`
}

type assignTaskRequest struct {
	AssignedTo string `json:"assigned_to" validate:"required,uuid"`
}

type taskResponse struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	Priority       Priority   `json:"priority"`
	Status         Status     `json:"status"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	CompletedDate  *time.Time `json:"completed_date,omitempty"`
	AssignedTo     *string    `json:"assigned_to,omitempty"`
	CreatedBy      string     `json:"created_by"`
	ProjectID      *string    `json:"project_id,omitempty"`
	DepartmentID   *string    `json:"department_id,omitempty"`
	EstimatedHours int        `json:"estimated_hours"`
	ActualHours    int        `json:"actual_hours"`
	Comments       *string    `json:"comments,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func toTaskResponse(t Task) taskResponse {
	return taskResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Priority:       t.Priority,
		Status:         t.Status,
		DueDate:        t.DueDate,
		CompletedDate:  t.CompletedDate,
		AssignedTo:     t.AssignedTo,
		CreatedBy:      t.CreatedBy,
		ProjectID:      t.ProjectID,
		DepartmentID:   t.DepartmentID,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		Comments:       t.Comments,
		Tags:           t.Tags,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func toTaskResponses(tasks []Task) []taskResponse {
	responses := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		responses = append(responses, toTaskResponse(t))
	}
	return responses
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", httpx.ValidationDetail(err))
		return
	}

	actor := rbac.PrincipalFromContext(r.Context())
	task, err := h.service.Create(r.Context(), actor, TaskDraft{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       Priority(req.Priority),
		DueDate:        req.DueDate,
		AssignedTo:     req.AssignedTo,
		ProjectID:      req.ProjectID,
		DepartmentID:   req.DepartmentID,
		EstimatedHours: req.EstimatedHours,
		Tags:           req.Tags,
	})
	if err != nil {
		h.respondError(w, err, "create task")
		return
	}
	httpx.JSON(w, http.StatusCreated, toTaskResponse(*task))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor := rbac.PrincipalFromContext(r.Context())
	tasks, err := h.service.List(r.Context(), actor)
	if err != nil {
		h.respondError(w, err, "list tasks")
		return
	}
	httpx.JSON(w, http.StatusOK, toTaskResponses(tasks))
}

func (h *Handler) handleMy(w http.ResponseWriter, r *http.Request) {
	actor := rbac.PrincipalFromContext(r.Context())
	tasks, err := h.service.My(r.Context(), actor)
	if err != nil {
		h.respondError(w, err, "list my tasks")
		return
	}
	httpx.JSON(w, http.StatusOK, toTaskResponses(tasks))
}

func (h *Handler) handleOverdue(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.Overdue(r.Context())
	if err != nil {
		h.respondError(w, err, "list overdue tasks")
		return
	}
	httpx.JSON(w, http.StatusOK, toTaskResponses(tasks))
}

func (h *Handler) handleByStatus(w http.ResponseWriter, r *http.Request) {
	status := chi.URLParam(r, "status")
	if !ValidStatus(status) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown status: "+status)
		return
	}
	tasks, err := h.service.ByStatus(r.Context(), Status(status))
	if err != nil {
		h.respondError(w, err, "list tasks by status")
		return
	}
	httpx.JSON(w, http.StatusOK, toTaskResponses(tasks))
}

func (h *Handler) handleByPriority(w http.ResponseWriter, r *http.Request) {
	priority := chi.URLParam(r, "priority")
	if !ValidPriority(priority) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown priority: "+priority)
		return
	}
	tasks, err := h.service.ByPriority(r.Context(), Priority(priority))
	if err != nil {
		h.respondError(w, err, "list tasks by priority")
		return
	}
	httpx.JSON(w, http.StatusOK, toTaskResponses(tasks))
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStatistics(r.Context())
	if err != nil {
		h.respondError(w, err, "task statistics")
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	actor := rbac.PrincipalFromContext(r.Context())
	task, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err, "get task")
		return
	}
	httpx.JSON(w, http.StatusOK, toTaskResponse(*task))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", httpx.ValidationDetail(err))
		return
	}

	upd := TaskUpdate{
		Title:          req.Title,
		Description:    req.Description,
		DueDate:        req.DueDate,
		AssignedTo:     req.AssignedTo,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
		Comments:       req.Comments,
		Tags:           req.Tags,
	}
	if req.Priority != nil {
		priority := Priority(*req.Priority)
		upd.Priority = &priority
	}
	if req.Status != nil {
		status := Status(*req.Status)
		upd.Status = &status
	}

	actor := rbac.PrincipalFromContext(r.Context())
	task, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), upd)
	if err != nil {
		h.respondError(w, err, "update task")
		return
	}
	httpx.JSON(w, http.StatusOK, toTaskResponse(*task))
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", httpx.ValidationDetail(err))
		return
	}

	actor := rbac.PrincipalFromContext(r.Context())
	task, err := h.service.UpdateStatus(r.Context(), actor, chi.URLParam(r, "id"), Status(req.Status))
	if err != nil {
		h.respondError(w, err, "update task status")
		return
	}
	httpx.JSON(w, http.StatusOK, toTaskResponse(*task))
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req assignTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", httpx.ValidationDetail(err))
		return
	}

	task, err := h.service.Assign(r.Context(), chi.URLParam(r, "id"), req.AssignedTo)
	if err != nil {
		h.respondError(w, err, "assign task")
		return
	}
	httpx.JSON(w, http.StatusOK, toTaskResponse(*task))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor := rbac.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err, "delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, httpx.ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
