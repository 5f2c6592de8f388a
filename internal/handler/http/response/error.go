package response

import (
	"errors"
	"net/http"

	"github.com/mosala-erp/payroll-backend-go/internal/domain/employee"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/ledger"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/payslip"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/period"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/refdata"
	"github.com/mosala-erp/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Period domain errors
	case errors.Is(err, period.ErrPeriodNotFound):
		NotFound(w, "Payroll period not found")
	case errors.Is(err, period.ErrPeriodExists):
		Conflict(w, "Payroll period already exists for this month")
	case errors.Is(err, period.ErrInvalidTransition):
		Conflict(w, "Operation not allowed in the period's current status")
	case errors.Is(err, period.ErrConflict):
		Conflict(w, "Period changed concurrently, retry the operation")
	case errors.Is(err, period.ErrEmptyPeriod):
		BadRequest(w, "Period has no payslips", nil)
	case errors.Is(err, period.ErrNonPositiveNet):
		BadRequest(w, "Period net total must be positive", nil)

	// Payslip domain errors
	case errors.Is(err, payslip.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payslip.ErrPayslipLocked):
		Conflict(w, "Payslip is locked")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Ledger domain errors
	case errors.Is(err, ledger.ErrAccountNotFound):
		NotFound(w, "Ledger account not found")
	case errors.Is(err, ledger.ErrEntryNotFound):
		NotFound(w, "Ledger entry not found")
	case errors.Is(err, ledger.ErrUnbalancedEntry):
		InternalServerError(w, "Posting produced an unbalanced entry")

	// Reference data errors
	case errors.Is(err, refdata.ErrMissingConfig):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
