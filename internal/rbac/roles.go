package rbac

// Role is a coarse-grained authority category. The set is closed: records with
// any other value resolve to an empty default permission set rather than
// failing.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// AllRoles returns the closed role enumeration.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleHR, RoleManager, RoleEmployee}
}

// IsValidRole reports whether the value is a member of the closed role set.
func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleAdmin, RoleHR, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// rolePermissions maps each role to its default permission set. A principal
// without an explicit custom set receives exactly these at token issuance.
var rolePermissions = map[Role][]string{
	RoleAdmin: AllPermissions(),
	RoleHR: {
		PermUserCreate, PermUserRead, PermUserUpdate, PermUserDelete, PermUserList,
		PermEmployeeCreate, PermEmployeeRead, PermEmployeeUpdate, PermEmployeeDelete, PermEmployeeList,
		PermEmployeeViewSalary, PermEmployeeUpdateSalary, PermEmployeeViewPerformance, PermEmployeeUpdatePerformance,
		PermDepartmentCreate, PermDepartmentRead, PermDepartmentUpdate, PermDepartmentDelete, PermDepartmentList,
		PermDepartmentManageBudget,
		PermTaskRead, PermTaskList,
		PermLeaveCreate, PermLeaveRead, PermLeaveUpdate, PermLeaveDelete, PermLeaveApprove, PermLeaveReject,
		PermLeaveList, PermLeaveViewBalance,
		PermPayrollGenerate, PermPayrollRead, PermPayrollUpdate, PermPayrollApprove, PermPayrollList,
		PermPayrollViewReports,
	},
	RoleManager: {
		PermUserRead, PermUserList,
		PermEmployeeRead, PermEmployeeList, PermEmployeeViewPerformance, PermEmployeeUpdatePerformance,
		PermDepartmentRead, PermDepartmentList,
		PermTaskCreate, PermTaskRead, PermTaskUpdate, PermTaskDelete, PermTaskList, PermTaskAssign,
		PermLeaveCreate, PermLeaveRead, PermLeaveApprove, PermLeaveReject, PermLeaveList, PermLeaveViewBalance,
	},
	RoleEmployee: {
		PermUserRead,
		PermEmployeeRead,
		PermDepartmentRead, PermDepartmentList,
		PermTaskCreate, PermTaskRead, PermTaskUpdate, PermTaskList,
		PermLeaveCreate, PermLeaveRead, PermLeaveUpdate, PermLeaveDelete, PermLeaveViewBalance,
	},
}

// manageGraph is the explicit authority relation consulted by CanManage.
// There is no inference rule: the listed targets are the whole relation.
var manageGraph = map[Role][]Role{
	RoleAdmin:    {RoleAdmin, RoleHR, RoleManager, RoleEmployee},
	RoleHR:       {RoleHR, RoleManager, RoleEmployee},
	RoleManager:  {RoleEmployee},
	RoleEmployee: {},
}

// DefaultPermissionsFor returns a copy of the role's default permission set.
// Unknown roles yield an empty set.
func DefaultPermissionsFor(role Role) []string {
	defaults, ok := rolePermissions[role]
	if !ok {
		return []string{}
	}
	out := make([]string, len(defaults))
	copy(out, defaults)
	return out
}

// ResolveEffectivePermissions returns the explicit set verbatim when present,
// otherwise the role defaults. The two are never merged.
func ResolveEffectivePermissions(explicit []string, role Role) []string {
	if len(explicit) > 0 {
		out := make([]string, len(explicit))
		copy(out, explicit)
		return out
	}
	return DefaultPermissionsFor(role)
}

// UnassignedPermissions returns catalog permissions absent from the role's
// default set.
func UnassignedPermissions(role Role) []string {
	defaults := make(map[string]struct{})
	for _, p := range DefaultPermissionsFor(role) {
		defaults[p] = struct{}{}
	}
	var unassigned []string
	for _, p := range AllPermissions() {
		if _, ok := defaults[p]; !ok {
			unassigned = append(unassigned, p)
		}
	}
	return unassigned
}

// CanManage reports whether managerRole has authority over targetRole per the
// manage graph.
func CanManage(managerRole, targetRole Role) bool {
	for _, t := range manageGraph[managerRole] {
		if t == targetRole {
			return true
		}
	}
	return false
}

// CanAccessOwnResource reports whether a principal may access a resource owned
// by another principal. Admin and HR bypass the ownership check entirely.
func CanAccessOwnResource(principalID, resourceOwnerID string, role Role) bool {
	if role == RoleAdmin || role == RoleHR {
		return true
	}
	return principalID == resourceOwnerID
}
