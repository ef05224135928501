// Package rbac implements the role and permission policy engine: the static
// permission catalog, per-role default permission sets and the pure predicates
// the HTTP guards evaluate on every request.
package rbac

// User management permissions.
const (
	PermUserCreate      = "user:create"
	PermUserRead        = "user:read"
	PermUserUpdate      = "user:update"
	PermUserDelete      = "user:delete"
	PermUserList        = "user:list"
	PermUserManageRoles = "user:manage_roles"
)

// Employee management permissions.
const (
	PermEmployeeCreate            = "employee:create"
	PermEmployeeRead              = "employee:read"
	PermEmployeeUpdate            = "employee:update"
	PermEmployeeDelete            = "employee:delete"
	PermEmployeeList              = "employee:list"
	PermEmployeeViewSalary        = "employee:view_salary"
	PermEmployeeUpdateSalary      = "employee:update_salary"
	PermEmployeeViewPerformance   = "employee:view_performance"
	PermEmployeeUpdatePerformance = "employee:update_performance"
)

// Department management permissions.
const (
	PermDepartmentCreate       = "department:create"
	PermDepartmentRead         = "department:read"
	PermDepartmentUpdate       = "department:update"
	PermDepartmentDelete       = "department:delete"
	PermDepartmentList         = "department:list"
	PermDepartmentManageBudget = "department:manage_budget"
)

// Task management permissions.
const (
	PermTaskCreate = "task:create"
	PermTaskRead   = "task:read"
	PermTaskUpdate = "task:update"
	PermTaskDelete = "task:delete"
	PermTaskList   = "task:list"
	PermTaskAssign = "task:assign"
)

// Leave management permissions.
const (
	PermLeaveCreate      = "leave:create"
	PermLeaveRead        = "leave:read"
	PermLeaveUpdate      = "leave:update"
	PermLeaveDelete      = "leave:delete"
	PermLeaveApprove     = "leave:approve"
	PermLeaveReject      = "leave:reject"
	PermLeaveList        = "leave:list"
	PermLeaveViewBalance = "leave:view_balance"
)

// Payroll permissions.
const (
	PermPayrollGenerate    = "payroll:generate"
	PermPayrollRead        = "payroll:read"
	PermPayrollUpdate      = "payroll:update"
	PermPayrollApprove     = "payroll:approve"
	PermPayrollList        = "payroll:list"
	PermPayrollViewReports = "payroll:view_reports"
)

// System administration permissions.
const (
	PermSystemManageSettings    = "system:manage_settings"
	PermSystemViewLogs          = "system:view_logs"
	PermSystemManageBackups     = "system:manage_backups"
	PermSystemManagePermissions = "system:manage_permissions"
)

// PermissionGroup names a resource domain and its permission keys.
type PermissionGroup struct {
	Resource    string
	Permissions []string
}

// Catalog lists every permission grouped by resource domain.
func Catalog() []PermissionGroup {
	return []PermissionGroup{
		{Resource: "user", Permissions: []string{
			PermUserCreate, PermUserRead, PermUserUpdate, PermUserDelete, PermUserList, PermUserManageRoles,
		}},
		{Resource: "employee", Permissions: []string{
			PermEmployeeCreate, PermEmployeeRead, PermEmployeeUpdate, PermEmployeeDelete, PermEmployeeList,
			PermEmployeeViewSalary, PermEmployeeUpdateSalary, PermEmployeeViewPerformance, PermEmployeeUpdatePerformance,
		}},
		{Resource: "department", Permissions: []string{
			PermDepartmentCreate, PermDepartmentRead, PermDepartmentUpdate, PermDepartmentDelete, PermDepartmentList,
			PermDepartmentManageBudget,
		}},
		{Resource: "task", Permissions: []string{
			PermTaskCreate, PermTaskRead, PermTaskUpdate, PermTaskDelete, PermTaskList, PermTaskAssign,
		}},
		{Resource: "leave", Permissions: []string{
			PermLeaveCreate, PermLeaveRead, PermLeaveUpdate, PermLeaveDelete, PermLeaveApprove, PermLeaveReject,
			PermLeaveList, PermLeaveViewBalance,
		}},
		{Resource: "payroll", Permissions: []string{
			PermPayrollGenerate, PermPayrollRead, PermPayrollUpdate, PermPayrollApprove, PermPayrollList,
			PermPayrollViewReports,
		}},
		{Resource: "system", Permissions: []string{
			PermSystemManageSettings, PermSystemViewLogs, PermSystemManageBackups, PermSystemManagePermissions,
		}},
	}
}

// AllPermissions returns every permission key in the catalog.
func AllPermissions() []string {
	var all []string
	for _, group := range Catalog() {
		all = append(all, group.Permissions...)
	}
	return all
}

// IsValidPermission reports whether the key exists in the catalog.
func IsValidPermission(permission string) bool {
	for _, group := range Catalog() {
		for _, p := range group.Permissions {
			if p == permission {
				return true
			}
		}
	}
	return false
}
