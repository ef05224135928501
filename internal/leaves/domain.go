// Package leaves implements leave request endpoints.
package leaves

import "time"

// Type categorises a leave request.
type Type string

const (
	TypeAnnual    Type = "annual"
	TypeSick      Type = "sick"
	TypeMaternity Type = "maternity"
	TypePaternity Type = "paternity"
	TypeUnpaid    Type = "unpaid"
	TypeOther     Type = "other"
)

// Status values a leave request moves through.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// AnnualLeaveLimit is the default number of leave days per calendar year.
const AnnualLeaveLimit = 25

// Leave is a request for time off.
type Leave struct {
	ID              string
	EmployeeID      string
	LeaveType       Type
	StartDate       time.Time
	EndDate         time.Time
	NumberOfDays    int
	Reason          *string
	Comments        *string
	Status          Status
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Balance summarises leave usage for one employee in the current year.
type Balance struct {
	TotalDays     int     `json:"total_days"`
	UsedDays      int     `json:"used_days"`
	RemainingDays int     `json:"remaining_days"`
	Leaves        []Leave `json:"leaves"`
}
