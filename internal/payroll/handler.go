package payroll

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

// Handler exposes payroll endpoints.
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

// MountRoutes registers payroll routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin, rbac.RoleHR},
		Permissions: []string{rbac.PermPayrollGenerate},
	})).Post("/generate", h.handleGenerate)

	r.With(h.rbac.RequirePermissions(rbac.PermPayrollList)).Get("/", h.handleList)

	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin, rbac.RoleHR},
		Permissions: []string{rbac.PermPayrollViewReports},
	})).Get("/reports/{period}", h.handleReport)

	r.With(h.rbac.RequirePermissions(rbac.PermPayrollRead)).Get("/{id}", h.handleGet)

	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin, rbac.RoleHR},
		Permissions: []string{rbac.PermPayrollUpdate},
	})).Put("/{id}", h.handleUpdate)

	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin, rbac.RoleHR},
		Permissions: []string{rbac.PermPayrollApprove},
	})).Put("/{id}/approve", h.handleApprove)

	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin, rbac.RoleHR},
		Permissions: []string{rbac.PermPayrollApprove},
	})).Put("/{id}/pay", h.handleMarkPaid)
}

type generateRequest struct {
	Period string `json:"period" validate:"required"`
}

type updateRecordRequest struct {
	BaseSalary *float64 `json:"base_salary,omitempty" validate:"omitempty,gte=0"`
	Allowances *float64 `json:"allowances,omitempty" validate:"omitempty,gte=0"`
	Deductions *float64 `json:"deductions,omitempty" validate:"omitempty,gte=0"`
}

type recordResponse struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employee_id"`
	Period     string     `json:"period"`
	BaseSalary float64    `json:"base_salary"`
	Allowances float64    `json:"allowances"`
	Deductions float64    `json:"deductions"`
	Tax        float64    `json:"tax"`
	GrossPay   float64    `json:"gross_pay"`
	NetPay     float64    `json:"net_pay"`
	Status     Status     `json:"status"`
	ApprovedBy *string    `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toRecordResponse(rec Record) recordResponse {
	return recordResponse{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		Period:     rec.Period,
		BaseSalary: rec.BaseSalary,
		Allowances: rec.Allowances,
		Deductions: rec.Deductions,
		Tax:        rec.Tax,
		GrossPay:   rec.GrossPay,
		NetPay:     rec.NetPay,
		Status:     rec.Status,
		ApprovedBy: rec.ApprovedBy,
		ApprovedAt: rec.ApprovedAt,
		PaidAt:     rec.PaidAt,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", httpx.ValidationDetail(err))
		return
	}

	result, err := h.service.Generate(r.Context(), req.Period)
	if err != nil {
		h.respondError(w, err, "generate payroll")
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor := rbac.PrincipalFromContext(r.Context())
	recs, err := h.service.List(r.Context(), actor)
	if err != nil {
		h.respondError(w, err, "list payroll")
		return
	}
	responses := make([]recordResponse, 0, len(recs))
	for _, rec := range recs {
		responses = append(responses, toRecordResponse(rec))
	}
	httpx.JSON(w, http.StatusOK, responses)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context(), chi.URLParam(r, "period"))
	if err != nil {
		h.respondError(w, err, "payroll report")
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	actor := rbac.PrincipalFromContext(r.Context())
	rec, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err, "get payroll record")
		return
	}
	httpx.JSON(w, http.StatusOK, toRecordResponse(*rec))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRecordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", httpx.ValidationDetail(err))
		return
	}

	rec, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), AmountUpdate{
		BaseSalary: req.BaseSalary,
		Allowances: req.Allowances,
		Deductions: req.Deductions,
	})
	if err != nil {
		h.respondError(w, err, "update payroll record")
		return
	}
	httpx.JSON(w, http.StatusOK, toRecordResponse(*rec))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	actor := rbac.PrincipalFromContext(r.Context())
	rec, err := h.service.Approve(r.Context(), actor.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err, "approve payroll record")
		return
	}
	httpx.JSON(w, http.StatusOK, toRecordResponse(*rec))
}

func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.MarkPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err, "mark payroll record paid")
		return
	}
	httpx.JSON(w, http.StatusOK, toRecordResponse(*rec))
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "payroll record not found")
	case errors.Is(err, httpx.ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, httpx.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, httpx.ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "payroll record already exists for this period")
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
