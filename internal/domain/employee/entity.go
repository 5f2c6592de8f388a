package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee read model: the contract facts payroll calculation needs.
type Employee struct {
	ID         string
	FirstName  string
	LastName   string
	Status     EmploymentStatus
	BaseSalary decimal.Decimal
	Currency   string
	Children   int
	CreatedAt  time.Time
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "ACTIVE"
	EmploymentStatusResigned   EmploymentStatus = "RESIGNED"
	EmploymentStatusTerminated EmploymentStatus = "TERMINATED"
)

// Attendance - per period/employee worked days and overtime input.
type Attendance struct {
	ID            string
	PeriodID      string
	EmployeeID    string
	DaysWorked    decimal.Decimal
	WorkingDays   decimal.Decimal
	OvertimeHours decimal.Decimal
}

// VariableKind tags an ad hoc payroll input.
type VariableKind string

const (
	VariableBonus     VariableKind = "BONUS"
	VariableAllowance VariableKind = "ALLOWANCE"
	VariableDeduction VariableKind = "DEDUCTION"
)

// Variable - ad hoc per period/employee amount (bonus, non-taxable
// allowance, or deduction), optionally tied to a cost center.
type Variable struct {
	ID           string
	PeriodID     string
	EmployeeID   string
	Kind         VariableKind
	Label        string
	Amount       decimal.Decimal
	CostCenterID *string
}
