package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pelita-hr/pelita/internal/platform/httpx"
)

// PermissionsHandler exposes the static catalog for admin tooling.
type PermissionsHandler struct {
	rbac Middleware
}

// NewPermissionsHandler constructs the handler.
func NewPermissionsHandler(rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{rbac: rbac}
}

// MountRoutes attaches catalog routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(Requirement{Permissions: []string{PermSystemManagePermissions}}))
		r.Get("/", h.listCatalog)
		r.Get("/roles", h.listRoles)
	})
}

type catalogGroupResponse struct {
	Resource    string   `json:"resource"`
	Permissions []string `json:"permissions"`
}

type roleResponse struct {
	Role                  string   `json:"role"`
	DefaultPermissions    []string `json:"default_permissions"`
	UnassignedPermissions []string `json:"unassigned_permissions"`
}

func (h *PermissionsHandler) listCatalog(w http.ResponseWriter, r *http.Request) {
	groups := Catalog()
	out := make([]catalogGroupResponse, len(groups))
	for i, g := range groups {
		out[i] = catalogGroupResponse{Resource: g.Resource, Permissions: g.Permissions}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"groups": out})
}

func (h *PermissionsHandler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles := AllRoles()
	out := make([]roleResponse, len(roles))
	for i, role := range roles {
		out[i] = roleResponse{
			Role:                  string(role),
			DefaultPermissions:    DefaultPermissionsFor(role),
			UnassignedPermissions: UnassignedPermissions(role),
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": out})
}
