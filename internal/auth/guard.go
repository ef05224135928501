package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pelita-hr/pelita/internal/platform/httpx"
	"github.com/pelita-hr/pelita/internal/rbac"
)

// Guard authenticates requests before they reach domain handlers. It verifies
// the bearer token and attaches the recovered principal to the context; role
// and permission checks are layered on top by rbac.Middleware.
type Guard struct {
	service *Service
	logger  *slog.Logger
}

// NewGuard constructs a Guard.
func NewGuard(service *Service, logger *slog.Logger) *Guard {
	return &Guard{service: service, logger: logger}
}

// Middleware authenticates from the signed claims alone. No store round-trip:
// claims may be stale relative to storage for at most the access-token TTL.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			return
		}
		claims, err := g.service.Issuer().Verify(token)
		if err != nil {
			if g.logger != nil {
				g.logger.Debug("token verification failed", slog.String("path", r.URL.Path))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
			return
		}
		ctx := rbacContext(r, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FreshMiddleware additionally checks the account still exists and is active.
// Used on routes where identity freshness matters; everything else skips the
// store lookup.
func (g *Guard) FreshMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			return
		}
		claims, err := g.service.ValidateToken(r.Context(), token)
		if err != nil {
			if g.logger != nil {
				g.logger.Debug("fresh token validation failed", slog.String("path", r.URL.Path))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
			return
		}
		ctx := rbacContext(r, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func rbacContext(r *http.Request, claims *Claims) context.Context {
	return rbac.ContextWithPrincipal(r.Context(), claims.Principal())
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}
