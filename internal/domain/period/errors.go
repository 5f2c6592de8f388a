package period

import "errors"

var (
	ErrPeriodNotFound    = errors.New("payroll period not found")
	ErrPeriodExists      = errors.New("payroll period already exists for this month")
	ErrInvalidTransition = errors.New("transition not permitted from current period status")
	ErrEmptyPeriod       = errors.New("payroll period has no payslips")
	ErrNonPositiveNet    = errors.New("aggregate net pay is not positive")
	ErrConflict          = errors.New("period status changed concurrently")
)
