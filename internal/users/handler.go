package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pelita-hr/pelita/internal/auth"
	"github.com/pelita-hr/pelita/internal/platform/httpx"
	"github.com/pelita-hr/pelita/internal/rbac"
	"github.com/pelita-hr/pelita/internal/shared"
)

// Handler exposes user management endpoints.
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

// MountRoutes registers user routes. Each route declares its requirement
// explicitly; routes without one admit any authenticated principal.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin, rbac.RoleHR},
		Permissions: []string{rbac.PermUserCreate},
	})).Post("/", h.handleCreate)

	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin, rbac.RoleHR, rbac.RoleManager},
		Permissions: []string{rbac.PermUserList},
	})).Get("/", h.handleList)

	r.With(h.rbac.RequirePermissions(rbac.PermUserRead)).Get("/{id}", h.handleGet)
	r.With(h.rbac.RequirePermissions(rbac.PermUserUpdate)).Put("/{id}", h.handleUpdate)

	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin, rbac.RoleHR},
		Permissions: []string{rbac.PermUserDelete},
	})).Delete("/{id}", h.handleDelete)

	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin},
		Permissions: []string{rbac.PermUserManageRoles},
	})).Put("/{id}/role", h.handleChangeRole)

	r.With(h.rbac.Require(rbac.Requirement{
		Roles:       []rbac.Role{rbac.RoleAdmin},
		Permissions: []string{rbac.PermUserManageRoles},
	})).Put("/{id}/permissions", h.handleChangePermissions)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", httpx.ValidationDetail(err))
		return
	}
	for _, perm := range req.Permissions {
		if !rbac.IsValidPermission(perm) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown permission: "+perm)
			return
		}
	}

	actor := rbac.PrincipalFromContext(r.Context())
	summary, err := h.service.Create(r.Context(), actor, auth.RegisterDraft{
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         rbac.Role(req.Role),
		Permissions:  req.Permissions,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		h.respondError(w, err, "create user")
		return
	}
	httpx.JSON(w, http.StatusCreated, summary)
}

type listUsersResponse struct {
	Data       []userResponse    `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, err, "list users")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	p := shared.NewPagination(page, perPage, len(list))

	start := p.Offset()
	if start > len(list) {
		start = len(list)
	}
	end := start + p.PerPage
	if end > len(list) {
		end = len(list)
	}

	responses := make([]userResponse, 0, end-start)
	for _, u := range list[start:end] {
		responses = append(responses, toUserResponse(u))
	}
	httpx.JSON(w, http.StatusOK, listUsersResponse{Data: responses, Pagination: p})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err, "get user")
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(*user))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", httpx.ValidationDetail(err))
		return
	}

	id := chi.URLParam(r, "id")
	actor := rbac.PrincipalFromContext(r.Context())
	if !rbac.CanAccessOwnResource(actor.ID, id, actor.Role) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "access denied: cannot modify another user's profile")
		return
	}

	user, err := h.service.Update(r.Context(), id, func(u *User) {
		if req.FirstName != nil {
			u.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			u.LastName = *req.LastName
		}
		if req.DepartmentID != nil {
			u.DepartmentID = req.DepartmentID
		}
		if req.IsActive != nil {
			u.IsActive = *req.IsActive
		}
	})
	if err != nil {
		h.respondError(w, err, "update user")
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(*user))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor := rbac.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err, "delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", httpx.ValidationDetail(err))
		return
	}

	actor := rbac.PrincipalFromContext(r.Context())
	user, err := h.service.ChangeRole(r.Context(), actor, chi.URLParam(r, "id"), rbac.Role(req.Role))
	if err != nil {
		h.respondError(w, err, "change role")
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(*user))
}

func (h *Handler) handleChangePermissions(w http.ResponseWriter, r *http.Request) {
	var req updatePermissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", httpx.ValidationDetail(err))
		return
	}

	actor := rbac.PrincipalFromContext(r.Context())
	user, err := h.service.ChangePermissions(r.Context(), actor, chi.URLParam(r, "id"), req.Permissions)
	if err != nil {
		h.respondError(w, err, "change permissions")
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(*user))
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "user not found")
	case errors.Is(err, httpx.ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, httpx.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, httpx.ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "email already registered")
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
