// Package departments implements department management endpoints.
package departments

import "time"

// Department is an organisational unit. Budget is stored as NUMERIC(15,2)
// and carried as float64, matching the rest of the monetary fields.
type Department struct {
	ID          string
	Name        string
	Description *string
	Code        *string
	ManagerID   *string
	Budget      *float64
	Location    *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
