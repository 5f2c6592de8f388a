package employee

import (
	"github.com/shopspring/decimal"

	"github.com/mosala-erp/payroll-backend-go/internal/pkg/validator"
)

type AttendanceRow struct {
	EmployeeID    string          `json:"employee_id"`
	DaysWorked    decimal.Decimal `json:"days_worked"`
	WorkingDays   decimal.Decimal `json:"working_days"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
}

type UpsertAttendanceRequest struct {
	Rows []AttendanceRow `json:"rows"`
}

func (r UpsertAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors
	for i, row := range r.Rows {
		if validator.IsEmpty(row.EmployeeID) {
			errs = append(errs, validator.ValidationError{Field: validator.IndexedField("rows", i, "employee_id"), Message: "is required"})
		}
		if row.WorkingDays.LessThanOrEqual(decimal.Zero) {
			errs = append(errs, validator.ValidationError{Field: validator.IndexedField("rows", i, "working_days"), Message: "must be positive"})
		}
		if row.DaysWorked.IsNegative() || row.DaysWorked.GreaterThan(row.WorkingDays) {
			errs = append(errs, validator.ValidationError{Field: validator.IndexedField("rows", i, "days_worked"), Message: "must be between 0 and working_days"})
		}
		if row.OvertimeHours.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: validator.IndexedField("rows", i, "overtime_hours"), Message: "must not be negative"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type VariableRow struct {
	EmployeeID   string          `json:"employee_id"`
	Kind         VariableKind    `json:"kind"`
	Label        string          `json:"label"`
	Amount       decimal.Decimal `json:"amount"`
	CostCenterID *string         `json:"cost_center_id,omitempty"`
}

type ReplaceVariablesRequest struct {
	Rows []VariableRow `json:"rows"`
}

func (r ReplaceVariablesRequest) Validate() error {
	var errs validator.ValidationErrors
	for i, row := range r.Rows {
		if validator.IsEmpty(row.EmployeeID) {
			errs = append(errs, validator.ValidationError{Field: validator.IndexedField("rows", i, "employee_id"), Message: "is required"})
		}
		switch row.Kind {
		case VariableBonus, VariableAllowance, VariableDeduction:
		default:
			errs = append(errs, validator.ValidationError{Field: validator.IndexedField("rows", i, "kind"), Message: "must be BONUS, ALLOWANCE or DEDUCTION"})
		}
		if row.Amount.LessThanOrEqual(decimal.Zero) {
			errs = append(errs, validator.ValidationError{Field: validator.IndexedField("rows", i, "amount"), Message: "must be positive; the kind carries the sign"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
