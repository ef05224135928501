package auth

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pelita-hr/pelita/internal/rbac"
	"github.com/pelita-hr/pelita/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	issuer *TokenIssuer
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService constructs a new Service. The audit logger is optional.
func NewService(repo Repository, issuer *TokenIssuer, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, issuer: issuer, audit: audit, logger: logger}
}

// LoginResult is what a successful login relays to the client.
type LoginResult struct {
	Tokens TokenPair
	User   Summary
}

// RegisterDraft carries the input for account creation. Password is plaintext
// here and hashed exactly once, inside Register.
type RegisterDraft struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	Role         rbac.Role
	Permissions  []string
	DepartmentID *string
}

// Login validates credentials and issues a token pair. Unknown email, wrong
// password and deactivated account all collapse into ErrInvalidCredentials so
// the observable outcome does not leak which one happened.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordAudit(ctx, user.ID, "login_failed", user.ID)
		return nil, shared.ErrInvalidCredentials
	}

	tokens, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, user.ID, "login", user.ID)
	return &LoginResult{Tokens: tokens, User: user.Redact()}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The claims
// come from the refresh token alone; the principal store is not consulted.
func (s *Service) Refresh(refreshToken string) (accessToken string, expiresIn int64, err error) {
	return s.issuer.Refresh(refreshToken)
}

// Register creates an account. The effective permission set is resolved at
// creation time: an explicit set is stored verbatim, otherwise the role
// defaults apply.
func (s *Service) Register(ctx context.Context, draft RegisterDraft) (*Summary, error) {
	role := draft.Role
	if role == "" {
		role = rbac.RoleEmployee
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(draft.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &User{
		ID:           uuid.NewString(),
		Email:        draft.Email,
		PasswordHash: string(hash),
		FirstName:    draft.FirstName,
		LastName:     draft.LastName,
		Role:         role,
		Permissions:  rbac.ResolveEffectivePermissions(draft.Permissions, role),
		DepartmentID: draft.DepartmentID,
	}
	stored, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, stored.ID, "register", stored.ID)
	summary := stored.Redact()
	return &summary, nil
}

// ValidateToken verifies the token and additionally checks that the account
// still exists and is active. This is the freshness path for sensitive
// routes; ordinary authorization relies on the signed claims alone.
func (s *Service) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByEmail(ctx, claims.Email)
	if err != nil || !user.IsActive {
		return nil, shared.ErrInvalidToken
	}
	return claims, nil
}

// Issuer exposes the token issuer for the guard.
func (s *Service) Issuer() *TokenIssuer {
	return s.issuer
}

func (s *Service) recordAudit(ctx context.Context, actorID, action, entityID string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: entityID,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("record auth audit", slog.Any("error", err))
	}
}
