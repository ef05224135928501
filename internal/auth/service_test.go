package auth

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/pelita-hr/pelita/internal/rbac"
	"github.com/pelita-hr/pelita/internal/shared"
)

type stubRepo struct {
	byEmail map[string]*User
	created *User
}

func (s *stubRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (s *stubRepo) FindByID(_ context.Context, id string) (*User, error) {
	for _, user := range s.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) Create(_ context.Context, user *User) (*User, error) {
	s.created = user
	stored := *user
	stored.IsActive = true
	return &stored, nil
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(hash)
}

func TestLoginSuccess(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*User{
		"dewi@pelita.local": {
			ID:           "u1",
			Email:        "dewi@pelita.local",
			PasswordHash: mustHash(t, "rahasia123"),
			Role:         rbac.RoleEmployee,
			IsActive:     true,
		},
	}}
	svc := NewService(repo, newTestIssuer(t), nil, nil)

	result, err := svc.Login(context.Background(), "dewi@pelita.local", "rahasia123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if result.User.ID != "u1" || result.User.Role != rbac.RoleEmployee {
		t.Fatalf("summary mismatch: %+v", result.User)
	}
}

func TestLoginFailuresCollapse(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*User{
		"dewi@pelita.local": {
			ID:           "u1",
			Email:        "dewi@pelita.local",
			PasswordHash: mustHash(t, "rahasia123"),
			IsActive:     true,
		},
		"gone@pelita.local": {
			ID:           "u2",
			Email:        "gone@pelita.local",
			PasswordHash: mustHash(t, "rahasia123"),
			IsActive:     false,
		},
	}}
	svc := NewService(repo, newTestIssuer(t), nil, nil)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@pelita.local", "rahasia123"},
		{"wrong password", "dewi@pelita.local", "salah"},
		{"deactivated account", "gone@pelita.local", "rahasia123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.email, tc.password)
			if !errors.Is(err, shared.ErrInvalidCredentials) {
				t.Fatalf("got %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestRegisterDefaultsToEmployee(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*User{}}
	svc := NewService(repo, newTestIssuer(t), nil, nil)

	summary, err := svc.Register(context.Background(), RegisterDraft{
		Email:    "baru@pelita.local",
		Password: "rahasia123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if summary.Role != rbac.RoleEmployee {
		t.Fatalf("role = %s, want employee", summary.Role)
	}
	want := rbac.DefaultPermissionsFor(rbac.RoleEmployee)
	if len(repo.created.Permissions) != len(want) {
		t.Fatalf("stored permissions = %v, want role defaults", repo.created.Permissions)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("rahasia123")); err != nil {
		t.Fatalf("stored hash does not match the password: %v", err)
	}
}

func TestRegisterStoresExplicitPermissionsVerbatim(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*User{}}
	svc := NewService(repo, newTestIssuer(t), nil, nil)

	_, err := svc.Register(context.Background(), RegisterDraft{
		Email:       "citra@pelita.local",
		Password:    "rahasia123",
		Role:        rbac.RoleManager,
		Permissions: []string{rbac.PermTaskRead},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(repo.created.Permissions) != 1 || repo.created.Permissions[0] != rbac.PermTaskRead {
		t.Fatalf("explicit set must be stored as given, got %v", repo.created.Permissions)
	}
}

func TestValidateTokenChecksAccountFreshness(t *testing.T) {
	user := &User{
		ID:           "u1",
		Email:        "dewi@pelita.local",
		PasswordHash: mustHash(t, "rahasia123"),
		Role:         rbac.RoleEmployee,
		IsActive:     true,
	}
	repo := &stubRepo{byEmail: map[string]*User{user.Email: user}}
	issuer := newTestIssuer(t)
	svc := NewService(repo, issuer, nil, nil)

	pair, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := svc.ValidateToken(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "u1" {
		t.Fatalf("subject = %s, want u1", claims.Subject)
	}

	user.IsActive = false
	if _, err := svc.ValidateToken(context.Background(), pair.AccessToken); !errors.Is(err, shared.ErrInvalidToken) {
		t.Fatalf("deactivated account must invalidate the token, got %v", err)
	}
}
