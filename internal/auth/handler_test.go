package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/pelita-hr/pelita/internal/platform/httpx"
	"github.com/pelita-hr/pelita/internal/rbac"
)

func newTestRouter(t *testing.T, repo Repository) (chi.Router, *Service) {
	t.Helper()
	svc := NewService(repo, newTestIssuer(t), nil, discardLogger())
	handler := NewHandler(discardLogger(), svc)
	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	return r, svc
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleLogin(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*User{
		"dewi@pelita.local": {
			ID:           "u1",
			Email:        "dewi@pelita.local",
			PasswordHash: mustHash(t, "rahasia123"),
			Role:         rbac.RoleEmployee,
			IsActive:     true,
		},
	}}
	router, _ := newTestRouter(t, repo)

	rec := postJSON(t, router, "/auth/login", map[string]string{
		"email":    "dewi@pelita.local",
		"password": "rahasia123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.EqualValues(t, 900, resp.ExpiresIn)
	require.Equal(t, "u1", resp.User.ID)
}

func TestHandleLoginBadCredentials(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*User{}}
	router, _ := newTestRouter(t, repo)

	rec := postJSON(t, router, "/auth/login", map[string]string{
		"email":    "nobody@pelita.local",
		"password": "whatever",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestHandleLoginValidation(t *testing.T) {
	router, _ := newTestRouter(t, &stubRepo{byEmail: map[string]*User{}})

	rec := postJSON(t, router, "/auth/login", map[string]string{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRefresh(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*User{}}
	router, svc := newTestRouter(t, repo)

	pair, err := svc.Issuer().Issue(&User{ID: "u1", Email: "dewi@pelita.local", Role: rbac.RoleEmployee})
	require.NoError(t, err)

	rec := postJSON(t, router, "/auth/refresh", map[string]string{"refresh_token": pair.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp refreshResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)

	rec = postJSON(t, router, "/auth/refresh", map[string]string{"refresh_token": "garbage"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleRegister(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*User{}}
	router, _ := newTestRouter(t, repo)

	rec := postJSON(t, router, "/auth/register", map[string]any{
		"email":      "baru@pelita.local",
		"password":   "rahasia123",
		"first_name": "Baru",
		"last_name":  "Karyawan",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var summary Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Equal(t, rbac.RoleEmployee, summary.Role)
}

func TestHandleRegisterRejectsUnknownPermission(t *testing.T) {
	router, _ := newTestRouter(t, &stubRepo{byEmail: map[string]*User{}})

	rec := postJSON(t, router, "/auth/register", map[string]any{
		"email":       "baru@pelita.local",
		"password":    "rahasia123",
		"first_name":  "Baru",
		"last_name":   "Karyawan",
		"permissions": []string{"user:fly"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

type duplicateRepo struct{ stubRepo }

func (duplicateRepo) Create(context.Context, *User) (*User, error) {
	return nil, httpx.ErrDuplicate
}

func TestHandleRegisterDuplicateEmail(t *testing.T) {
	router, _ := newTestRouter(t, &duplicateRepo{})

	rec := postJSON(t, router, "/auth/register", map[string]any{
		"email":      "dewi@pelita.local",
		"password":   "rahasia123",
		"first_name": "Dewi",
		"last_name":  "Putri",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}
