package payslip

import (
	"context"

	"github.com/shopspring/decimal"
)

type PayslipRepository interface {
	Create(ctx context.Context, p Payslip) (Payslip, error)
	GetByID(ctx context.Context, id string) (Payslip, error)
	ListByPeriod(ctx context.Context, periodID string) ([]Payslip, error)
	ExistingEmployeeIDs(ctx context.Context, periodID string) (map[string]bool, error)
	ReplaceLines(ctx context.Context, payslipID string, gross, net decimal.Decimal, lines []Line) error
	SetLockedForPeriod(ctx context.Context, periodID string, locked bool) (int, error)
	CountByPeriod(ctx context.Context, periodID string) (int, error)
	NetTotal(ctx context.Context, periodID string) (decimal.Decimal, error)
}
