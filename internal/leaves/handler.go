package leaves

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

// Handler exposes leave request endpoints.
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

// MountRoutes registers leave routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequirePermissions(rbac.PermLeaveCreate)).Post("/", h.handleCreate)
	r.With(h.rbac.RequirePermissions(rbac.PermLeaveList)).Get("/", h.handleList)

	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin, rbac.RoleHR, rbac.RoleManager},
		Permissions: []string{rbac.PermLeaveApprove},
	})).Get("/pending", h.handlePending)

	r.With(h.rbac.RequirePermissions(rbac.PermLeaveViewBalance)).Get("/balance/my", h.handleMyBalance)
	r.With(h.rbac.RequirePermissions(rbac.PermLeaveViewBalance)).Get("/balance/{employeeId}", h.handleBalance)

	r.With(h.rbac.RequirePermissions(rbac.PermLeaveRead)).Get("/{id}", h.handleGet)

	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin, rbac.RoleHR, rbac.RoleManager},
		Permissions: []string{rbac.PermLeaveApprove},
	})).Put("/{id}/approve", h.handleResolve)

	r.With(h.rbac.RequirePermissions(rbac.PermLeaveUpdate)).Put("/{id}", h.handleUpdate)
	r.With(h.rbac.RequirePermissions(rbac.PermLeaveDelete)).Delete("/{id}", h.handleCancel)
}

type createLeaveRequest struct {
	EmployeeID   string    `json:"employee_id" validate:"required,uuid"`
	LeaveType    string    `json:"leave_type" validate:"required,oneof=annual sick maternity paternity unpaid other"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required"`
	NumberOfDays int       `json:"number_of_days" validate:"required,gt=0"`
	Reason       *string   `json:"reason,omitempty"`
	Comments     *string   `json:"comments,omitempty"`
}

type updateLeaveRequest struct {
	LeaveType    *string    `json:"leave_type,omitempty" validate:"omitempty,oneof=annual sick maternity paternity unpaid other"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	NumberOfDays *int       `json:"number_of_days,omitempty" validate:"omitempty,gt=0"`
	Reason       *string    `json:"reason,omitempty"`
	Comments     *string    `json:"comments,omitempty"`
}

type resolveLeaveRequest struct {
	Status          string  `json:"status" validate:"required,oneof=approved rejected"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	Comments        *string `json:"comments,omitempty"`
}

type leaveResponse struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employee_id"`
	LeaveType       Type       `json:"leave_type"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	NumberOfDays    int        `json:"number_of_days"`
	Reason          *string    `json:"reason,omitempty"`
	Comments        *string    `json:"comments,omitempty"`
	Status          Status     `json:"status"`
	ApprovedBy      *string    `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toLeaveResponse(l Leave) leaveResponse {
	return leaveResponse{
		ID:              l.ID,
		EmployeeID:      l.EmployeeID,
		LeaveType:       l.LeaveType,
		StartDate:       l.StartDate,
		EndDate:         l.EndDate,
		NumberOfDays:    l.NumberOfDays,
		Reason:          l.Reason,
		Comments:        l.Comments,
		Status:          l.Status,
		ApprovedBy:      l.ApprovedBy,
		ApprovedAt:      l.ApprovedAt,
		RejectionReason: l.RejectionReason,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

func toLeaveResponses(leaves []Leave) []leaveResponse {
	responses := make([]leaveResponse, 0, len(leaves))
	for _, l := range leaves {
		responses = append(responses, toLeaveResponse(l))
	}
	return responses
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createLeaveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", httpx.ValidationDetail(err))
		return
	}

	actor := rbac.PrincipalFromContext(r.Context())
	leave, err := h.service.Create(r.Context(), actor, LeaveDraft{
		EmployeeID:   req.EmployeeID,
		LeaveType:    Type(req.LeaveType),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		NumberOfDays: req.NumberOfDays,
		Reason:       req.Reason,
		Comments:     req.Comments,
	})
	if err != nil {
		h.respondError(w, err, "create leave")
		return
	}
	httpx.JSON(w, http.StatusCreated, toLeaveResponse(*leave))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor := rbac.PrincipalFromContext(r.Context())
	leaves, err := h.service.List(r.Context(), actor)
	if err != nil {
		h.respondError(w, err, "list leaves")
		return
	}
	httpx.JSON(w, http.StatusOK, toLeaveResponses(leaves))
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.service.Pending(r.Context())
	if err != nil {
		h.respondError(w, err, "list pending leaves")
		return
	}
	httpx.JSON(w, http.StatusOK, toLeaveResponses(leaves))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	actor := rbac.PrincipalFromContext(r.Context())
	leave, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err, "get leave")
		return
	}
	httpx.JSON(w, http.StatusOK, toLeaveResponse(*leave))
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveLeaveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", httpx.ValidationDetail(err))
		return
	}

	actor := rbac.PrincipalFromContext(r.Context())
	leave, err := h.service.Resolve(r.Context(), actor.ID, chi.URLParam(r, "id"), Resolution{
		Status:          Status(req.Status),
		Comments:        req.Comments,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		h.respondError(w, err, "resolve leave")
		return
	}
	httpx.JSON(w, http.StatusOK, toLeaveResponse(*leave))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateLeaveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", httpx.ValidationDetail(err))
		return
	}

	upd := LeaveUpdate{
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		NumberOfDays: req.NumberOfDays,
		Reason:       req.Reason,
		Comments:     req.Comments,
	}
	if req.LeaveType != nil {
		leaveType := Type(*req.LeaveType)
		upd.LeaveType = &leaveType
	}

	actor := rbac.PrincipalFromContext(r.Context())
	leave, err := h.service.Update(r.Context(), actor.ID, chi.URLParam(r, "id"), upd)
	if err != nil {
		h.respondError(w, err, "update leave")
		return
	}
	httpx.JSON(w, http.StatusOK, toLeaveResponse(*leave))
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	actor := rbac.PrincipalFromContext(r.Context())
	leave, err := h.service.Cancel(r.Context(), actor.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err, "cancel leave")
		return
	}
	httpx.JSON(w, http.StatusOK, toLeaveResponse(*leave))
}

func (h *Handler) handleMyBalance(w http.ResponseWriter, r *http.Request) {
	actor := rbac.PrincipalFromContext(r.Context())
	balance, err := h.service.BalanceFor(r.Context(), actor.ID)
	if err != nil {
		h.respondError(w, err, "leave balance")
		return
	}
	httpx.JSON(w, http.StatusOK, balance)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.service.BalanceFor(r.Context(), chi.URLParam(r, "employeeId"))
	if err != nil {
		h.respondError(w, err, "leave balance")
		return
	}
	httpx.JSON(w, http.StatusOK, balance)
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "leave request not found")
	case errors.Is(err, httpx.ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, httpx.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
