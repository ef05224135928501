// Package payroll implements payroll record endpoints.
package payroll

import "time"

// Status values a payroll record moves through.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusApproved Status = "approved"
	StatusPaid     Status = "paid"
)

// TaxRate is the flat withholding rate applied to gross pay.
const TaxRate = 0.10

// Record is one employee's pay for one period. Period uses the YYYY-MM form.
type Record struct {
	ID         string
	EmployeeID string
	Period     string
	BaseSalary float64
	Allowances float64
	Deductions float64
	Tax        float64
	GrossPay   float64
	NetPay     float64
	Status     Status
	ApprovedBy *string
	ApprovedAt *time.Time
	PaidAt     *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Compute fills the derived amounts from the base figures.
func (r *Record) Compute() {
	r.GrossPay = r.BaseSalary + r.Allowances
	r.Tax = r.GrossPay * TaxRate
	r.NetPay = r.GrossPay - r.Tax - r.Deductions
}
