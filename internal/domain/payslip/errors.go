package payslip

import "errors"

var (
	ErrPayslipNotFound = errors.New("payslip not found")
	ErrPayslipLocked   = errors.New("payslip belongs to a non-open period")
)
