package rbac

import (
	"strings"
	"testing"
)

func TestEvaluateNilPrincipal(t *testing.T) {
	decision := Evaluate(nil, Requirement{Roles: []Role{RoleAdmin}})
	if decision.Allowed {
		t.Fatal("expected nil principal to be denied")
	}
}

func TestEvaluateEmptyRequirementPasses(t *testing.T) {
	principal := &Principal{ID: "u1", Role: RoleEmployee}
	decision := Evaluate(principal, Requirement{})
	if !decision.Allowed {
		t.Fatal("expected empty requirement to admit any authenticated principal")
	}
}

func TestEvaluateRoleMismatch(t *testing.T) {
	principal := &Principal{ID: "u1", Role: RoleEmployee}
	decision := Evaluate(principal, Requirement{Roles: []Role{RoleAdmin, RoleHR}})
	if decision.Allowed {
		t.Fatal("expected employee to be denied an admin route")
	}
	reason := decision.Reason()
	if !strings.Contains(reason, "admin") || !strings.Contains(reason, "hr") {
		t.Fatalf("reason should name the unmet roles, got %q", reason)
	}
}

func TestEvaluateMissingPermissionsAreListed(t *testing.T) {
	principal := &Principal{
		ID:          "u1",
		Role:        RoleManager,
		Permissions: []string{PermTaskRead, PermTaskList},
	}
	decision := Evaluate(principal, Requirement{
		Permissions: []string{PermTaskRead, PermTaskDelete, PermTaskAssign},
	})
	if decision.Allowed {
		t.Fatal("expected denial when permissions are missing")
	}
	if len(decision.MissingPermissions) != 2 {
		t.Fatalf("expected exactly the missing permissions, got %v", decision.MissingPermissions)
	}
	for _, perm := range decision.MissingPermissions {
		if perm == PermTaskRead {
			t.Fatalf("held permission reported missing: %v", decision.MissingPermissions)
		}
	}
}

func TestEvaluateBothDimensionsMustPass(t *testing.T) {
	principal := &Principal{
		ID:          "u1",
		Role:        RoleManager,
		Permissions: []string{PermTaskDelete},
	}
	decision := Evaluate(principal, Requirement{
		Roles:       []Role{RoleAdmin},
		Permissions: []string{PermTaskDelete},
	})
	if decision.Allowed {
		t.Fatal("role requirement unmet, expected denial despite held permission")
	}
}

func TestEvaluateAllows(t *testing.T) {
	principal := &Principal{
		ID:          "u1",
		Role:        RoleHR,
		Permissions: []string{PermUserCreate, PermUserList},
	}
	decision := Evaluate(principal, Requirement{
		Roles:       []Role{RoleAdmin, RoleHR},
		Permissions: []string{PermUserCreate},
	})
	if !decision.Allowed {
		t.Fatalf("expected allow, got missing roles %v perms %v", decision.MissingRoles, decision.MissingPermissions)
	}
}

func TestHasAllPermissions(t *testing.T) {
	granted := []string{PermTaskRead, PermTaskUpdate}
	if !HasAllPermissions(granted, nil) {
		t.Fatal("empty requirement should pass")
	}
	if !HasAllPermissions(granted, []string{PermTaskRead}) {
		t.Fatal("held permission should pass")
	}
	if HasAllPermissions(granted, []string{PermTaskRead, PermTaskDelete}) {
		t.Fatal("missing permission should fail")
	}
}

func TestHasAnyPermission(t *testing.T) {
	granted := []string{PermTaskRead}
	if !HasAnyPermission(granted, nil) {
		t.Fatal("empty requirement should pass")
	}
	if !HasAnyPermission(granted, []string{PermTaskDelete, PermTaskRead}) {
		t.Fatal("one held permission should pass")
	}
	if HasAnyPermission(granted, []string{PermTaskDelete}) {
		t.Fatal("no held permission should fail")
	}
}
