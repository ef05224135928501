package rbac

import (
	"context"
	"strings"
)

// Principal describes the authenticated actor as recovered from verified token
// claims. It is rebuilt per request and never persisted.
type Principal struct {
	ID          string
	Email       string
	Role        Role
	Permissions []string
	FirstName   string
	LastName    string
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in the context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from the context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// Requirement declares the role and permission constraints for one operation.
// Both dimensions are optional; an empty Requirement imposes no restriction.
// Requirements are attached statically at route definition time and evaluated
// fresh on every request.
type Requirement struct {
	Roles       []Role
	Permissions []string
}

// IsEmpty reports whether the requirement imposes no restriction.
func (r Requirement) IsEmpty() bool {
	return len(r.Roles) == 0 && len(r.Permissions) == 0
}

// Decision is the outcome of evaluating a Requirement against a principal.
// When denied, the unmet requirement sets are carried for diagnosability.
type Decision struct {
	Allowed            bool
	MissingRoles       []Role
	MissingPermissions []string
}

// Reason renders the unmet requirement for operator-facing deny responses.
func (d Decision) Reason() string {
	if d.Allowed {
		return ""
	}
	if len(d.MissingRoles) > 0 {
		names := make([]string, len(d.MissingRoles))
		for i, role := range d.MissingRoles {
			names[i] = string(role)
		}
		return "required roles: " + strings.Join(names, ", ")
	}
	if len(d.MissingPermissions) > 0 {
		return "required permissions: " + strings.Join(d.MissingPermissions, ", ")
	}
	return "access denied"
}

// RoleHasAny reports whether the principal role satisfies the required role
// set. An empty requirement always passes.
func RoleHasAny(principalRole Role, requiredRoles []Role) bool {
	if len(requiredRoles) == 0 {
		return true
	}
	for _, role := range requiredRoles {
		if principalRole == role {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every required key is present in the
// granted set. Ordering and duplicates in either set are irrelevant.
func HasAllPermissions(granted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := toSet(granted)
	for _, p := range required {
		if _, ok := set[p]; !ok {
			return false
		}
	}
	return true
}

// HasAnyPermission reports whether at least one required key is present in the
// granted set. An empty requirement always passes.
func HasAnyPermission(granted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := toSet(granted)
	for _, p := range required {
		if _, ok := set[p]; ok {
			return true
		}
	}
	return false
}

// Evaluate combines both requirement dimensions with logical AND. Either
// dimension being absent passes by itself; an entirely empty requirement
// allows any authenticated principal.
func Evaluate(p *Principal, req Requirement) Decision {
	if p == nil {
		return Decision{Allowed: false}
	}
	if !RoleHasAny(p.Role, req.Roles) {
		missing := make([]Role, len(req.Roles))
		copy(missing, req.Roles)
		return Decision{MissingRoles: missing}
	}
	if !HasAllPermissions(p.Permissions, req.Permissions) {
		set := toSet(p.Permissions)
		var missing []string
		for _, perm := range req.Permissions {
			if _, ok := set[perm]; !ok {
				missing = append(missing, perm)
			}
		}
		return Decision{MissingPermissions: missing}
	}
	return Decision{Allowed: true}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
