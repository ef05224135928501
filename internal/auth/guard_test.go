package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pelita-hr/pelita/internal/rbac"
)

func guardedEcho(t *testing.T, repo Repository) (*Guard, *Service, http.Handler) {
	t.Helper()
	svc := NewService(repo, newTestIssuer(t), nil, nil)
	guard := NewGuard(svc, nil)
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := rbac.PrincipalFromContext(r.Context())
		if principal == nil {
			t.Error("expected a principal in the handler context")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(principal.ID))
	})
	return guard, svc, echo
}

func TestGuardRejectsMissingToken(t *testing.T) {
	guard, _, echo := guardedEcho(t, &stubRepo{byEmail: map[string]*User{}})
	handler := guard.Middleware(echo)

	for _, header := range []string{"", "Bearer ", "Basic abc", "token-without-scheme"} {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("Authorization=%q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestGuardRejectsInvalidToken(t *testing.T) {
	guard, _, echo := guardedEcho(t, &stubRepo{byEmail: map[string]*User{}})
	handler := guard.Middleware(echo)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGuardAttachesPrincipal(t *testing.T) {
	guard, svc, echo := guardedEcho(t, &stubRepo{byEmail: map[string]*User{}})
	handler := guard.Middleware(echo)

	pair, err := svc.Issuer().Issue(&User{ID: "u1", Email: "dewi@pelita.local", Role: rbac.RoleEmployee})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "u1" {
		t.Fatalf("principal id = %q, want u1", rec.Body.String())
	}
}

func TestFreshMiddlewareChecksStore(t *testing.T) {
	user := &User{
		ID:       "u1",
		Email:    "dewi@pelita.local",
		Role:     rbac.RoleEmployee,
		IsActive: true,
	}
	repo := &stubRepo{byEmail: map[string]*User{user.Email: user}}
	guard, svc, echo := guardedEcho(t, repo)
	handler := guard.FreshMiddleware(echo)

	pair, err := svc.Issuer().Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	user.IsActive = false
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("deactivated account: status = %d, want 401", rec.Code)
	}
}

func TestGuardComposesWithAuthorization(t *testing.T) {
	guard, svc, _ := guardedEcho(t, &stubRepo{byEmail: map[string]*User{}})
	mw := rbac.Middleware{}
	handler := guard.Middleware(mw.Require(rbac.Requirement{
		Roles: []rbac.Role{rbac.RoleAdmin, rbac.RoleHR},
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	issue := func(role rbac.Role) string {
		t.Helper()
		pair, err := svc.Issuer().Issue(&User{ID: "u1", Email: "x@pelita.local", Role: role})
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		return pair.AccessToken
	}

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+issue(rbac.RoleEmployee))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("employee on admin route: status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+issue(rbac.RoleHR))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("hr on admin route: status = %d, want 204", rec.Code)
	}
}
