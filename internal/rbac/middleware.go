package rbac

import (
	"log/slog"
	"net/http"

	"github.com/pelita-hr/pelita/internal/platform/httpx"
)

// Middleware wires policy evaluation into the HTTP handler chain. It expects
// an authenticated principal in the request context; authentication itself is
// the auth guard's job.
type Middleware struct {
	Logger *slog.Logger
}

// Require evaluates the declared requirement against the request principal.
// An empty requirement lets any authenticated principal through: absence of a
// declaration means "no restriction", not "deny by default".
func (m Middleware) Require(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			if req.IsEmpty() {
				next.ServeHTTP(w, r)
				return
			}
			decision := Evaluate(principal, req)
			if !decision.Allowed {
				if m.Logger != nil {
					m.Logger.Warn("authorization denied",
						slog.String("principal", principal.ID),
						slog.String("role", string(principal.Role)),
						slog.String("reason", decision.Reason()),
						slog.String("path", r.URL.Path))
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "access denied: "+decision.Reason())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles is shorthand for a roles-only requirement.
func (m Middleware) RequireRoles(roles ...Role) func(http.Handler) http.Handler {
	return m.Require(Requirement{Roles: roles})
}

// RequirePermissions is shorthand for a permissions-only requirement.
func (m Middleware) RequirePermissions(perms ...string) func(http.Handler) http.Handler {
	return m.Require(Requirement{Permissions: perms})
}
