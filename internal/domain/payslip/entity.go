package payslip

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineCode classifies a payslip line. Each code carries a fixed semantic
// sign and maps to a fixed ledger account family (see service/posting).
type LineCode string

const (
	// Earnings, positive, included in gross
	CodeBase  LineCode = "BASE"
	CodePrime LineCode = "PRIME"
	CodeOT    LineCode = "OT"

	// Non-taxable allowances, positive, excluded from gross, included in net
	CodeAlloc LineCode = "ALLOC"

	// Employee deductions, negative, included in net
	CodeCNSSEmp LineCode = "CNSS_EMP"
	CodeIPR     LineCode = "IPR"
	CodeRetenue LineCode = "RETENUE"

	// Employer charges, positive, excluded from net
	CodeCNSSEr LineCode = "CNSS_ER"
	CodeONEM   LineCode = "ONEM"
	CodeINPP   LineCode = "INPP"
)

// Line - a classified monetary fact on a payslip. Amount is signed:
// deductions are negative.
type Line struct {
	ID           string
	PayslipID    string
	Code         LineCode
	Label        string
	Amount       decimal.Decimal
	BaseAmount   *decimal.Decimal
	Position     int
	CostCenterID *string
	Meta         map[string]any
}

// Payslip - per-employee, per-period pay record. Immutable once the owning
// period is locked.
type Payslip struct {
	ID         string
	Ref        string
	PeriodID   string
	EmployeeID string
	Gross      decimal.Decimal
	Net        decimal.Decimal
	Currency   string
	Locked     bool
	Lines      []Line
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Joined fields
	EmployeeName *string
}
