package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pelita-hr/pelita/internal/rbac"
	"github.com/pelita-hr/pelita/internal/shared"
)

// Claims is the signed token payload. Access and refresh tokens carry the same
// shape; they differ only in lifetime. Because a refreshed access token copies
// the refresh token's claims verbatim, authority can never escalate past what
// was granted at login.
type Claims struct {
	Email       string    `json:"email"`
	Role        rbac.Role `json:"role"`
	Permissions []string  `json:"permissions"`
	jwt.RegisteredClaims
}

// Principal converts verified claims into the policy engine's principal view.
func (c *Claims) Principal() *rbac.Principal {
	return &rbac.Principal{
		ID:          c.Subject,
		Email:       c.Email,
		Role:        c.Role,
		Permissions: c.Permissions,
	}
}

// TokenPair bundles the credentials minted at login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// TokenIssuer signs and verifies HS256 tokens with the process-wide secret.
// The secret is loaded once at startup and never mutated, so issuance and
// verification are safe to run concurrently without coordination.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer. An empty secret is a configuration
// error: there is deliberately no built-in fallback.
func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// AccessTTLSeconds returns the access token lifetime relayed to clients.
func (i *TokenIssuer) AccessTTLSeconds() int64 {
	return int64(i.accessTTL / time.Second)
}

// Issue mints an access/refresh token pair carrying identical claims. The
// permission set is resolved once here; the tokens are self-contained and no
// store lookup is needed to authorize ordinary requests.
func (i *TokenIssuer) Issue(user *User) (TokenPair, error) {
	claims := Claims{
		Email:       user.Email,
		Role:        user.Role,
		Permissions: rbac.ResolveEffectivePermissions(user.Permissions, user.Role),
	}
	claims.Subject = user.ID

	access, err := i.sign(claims, i.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.sign(claims, i.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    i.AccessTTLSeconds(),
	}, nil
}

// Verify checks signature integrity and expiry. Any structural, signature or
// expiry failure yields shared.ErrInvalidToken and no claims.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return nil, shared.ErrInvalidToken
	}
	return &claims, nil
}

// Refresh verifies the refresh token and mints a new access token carrying the
// decoded claims unchanged. Role and permissions are intentionally not
// re-derived from storage: the refreshed token's authority stays bounded by
// what was granted at login.
func (i *TokenIssuer) Refresh(refreshToken string) (string, int64, error) {
	claims, err := i.Verify(refreshToken)
	if err != nil {
		return "", 0, err
	}
	next := Claims{
		Email:       claims.Email,
		Role:        claims.Role,
		Permissions: claims.Permissions,
	}
	next.Subject = claims.Subject

	access, err := i.sign(next, i.accessTTL)
	if err != nil {
		return "", 0, err
	}
	return access, i.AccessTTLSeconds(), nil
}

func (i *TokenIssuer) sign(claims Claims, ttl time.Duration) (string, error) {
	now := i.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}
