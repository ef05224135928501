package rbac

import "testing"

func TestManageGraph(t *testing.T) {
	cases := []struct {
		manager Role
		target  Role
		want    bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleHR, true},
		{RoleAdmin, RoleManager, true},
		{RoleAdmin, RoleEmployee, true},
		{RoleHR, RoleAdmin, false},
		{RoleHR, RoleHR, true},
		{RoleHR, RoleManager, true},
		{RoleHR, RoleEmployee, true},
		{RoleManager, RoleManager, false},
		{RoleManager, RoleEmployee, true},
		{RoleEmployee, RoleEmployee, false},
	}
	for _, tc := range cases {
		if got := CanManage(tc.manager, tc.target); got != tc.want {
			t.Errorf("CanManage(%s, %s) = %v, want %v", tc.manager, tc.target, got, tc.want)
		}
	}
}

func TestResolveEffectivePermissionsExplicitWinsVerbatim(t *testing.T) {
	explicit := []string{PermTaskRead}
	got := ResolveEffectivePermissions(explicit, RoleAdmin)
	if len(got) != 1 || got[0] != PermTaskRead {
		t.Fatalf("explicit set must be used verbatim, got %v", got)
	}
}

func TestResolveEffectivePermissionsFallsBackToDefaults(t *testing.T) {
	got := ResolveEffectivePermissions(nil, RoleEmployee)
	if len(got) == 0 {
		t.Fatal("expected employee defaults")
	}
	for _, p := range got {
		if p == PermTaskDelete {
			t.Fatal("employee defaults must not include task deletion")
		}
	}
}

func TestResolveEffectivePermissionsUnknownRole(t *testing.T) {
	got := ResolveEffectivePermissions(nil, Role("superuser"))
	if len(got) != 0 {
		t.Fatalf("unknown role must resolve to an empty set, got %v", got)
	}
}

func TestDefaultPermissionsForReturnsCopy(t *testing.T) {
	first := DefaultPermissionsFor(RoleEmployee)
	first[0] = "mutated"
	second := DefaultPermissionsFor(RoleEmployee)
	if second[0] == "mutated" {
		t.Fatal("DefaultPermissionsFor must not expose internal state")
	}
}

func TestAdminDefaultsCoverCatalog(t *testing.T) {
	defaults := make(map[string]struct{})
	for _, p := range DefaultPermissionsFor(RoleAdmin) {
		defaults[p] = struct{}{}
	}
	for _, p := range AllPermissions() {
		if _, ok := defaults[p]; !ok {
			t.Fatalf("admin defaults missing %s", p)
		}
	}
}

func TestCanAccessOwnResource(t *testing.T) {
	if !CanAccessOwnResource("a", "b", RoleAdmin) {
		t.Fatal("admin bypasses ownership")
	}
	if !CanAccessOwnResource("a", "b", RoleHR) {
		t.Fatal("hr bypasses ownership")
	}
	if CanAccessOwnResource("a", "b", RoleEmployee) {
		t.Fatal("employee cannot access another user's resource")
	}
	if !CanAccessOwnResource("a", "a", RoleEmployee) {
		t.Fatal("owner always has access")
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range AllRoles() {
		if !IsValidRole(string(role)) {
			t.Errorf("role %s should be valid", role)
		}
	}
	if IsValidRole("superuser") {
		t.Error("unknown role should be invalid")
	}
}

func TestIsValidPermission(t *testing.T) {
	if !IsValidPermission(PermUserManageRoles) {
		t.Error("catalog permission should be valid")
	}
	if IsValidPermission("user:fly") {
		t.Error("unknown permission should be invalid")
	}
}
