// Package employees implements employee record management endpoints.
package employees

import "time"

// Employee is an HR personnel record. It is distinct from the login account:
// UserID links the record to its account when one exists.
type Employee struct {
	ID                string
	EmployeeCode      string
	FirstName         string
	LastName          string
	Email             string
	Phone             *string
	DateOfBirth       *time.Time
	HireDate          *time.Time
	Department        *string
	Position          *string
	Salary            *float64
	PerformanceRating *int
	IsActive          bool
	ManagerID         *string
	UserID            *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
