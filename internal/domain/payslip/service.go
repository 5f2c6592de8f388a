package payslip

import (
	"context"

	"github.com/mosala-erp/payroll-backend-go/internal/domain/employee"
)

// PayslipService covers payslip generation and the payroll inputs feeding it.
type PayslipService interface {
	GeneratePayslips(ctx context.Context, periodID string) (GenerateResult, error)
	RecalculatePayslip(ctx context.Context, payslipID string) (PayslipResponse, error)
	GetPayslip(ctx context.Context, id string) (PayslipResponse, error)
	PreviewPeriod(ctx context.Context, periodID string) (PreviewResponse, error)
	PeriodSummary(ctx context.Context, periodID string) (SummaryResponse, error)
	UpsertAttendance(ctx context.Context, periodID string, req employee.UpsertAttendanceRequest) error
	ReplaceVariables(ctx context.Context, periodID string, req employee.ReplaceVariablesRequest) error
}
