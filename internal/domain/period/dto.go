package period

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mosala-erp/payroll-backend-go/internal/pkg/validator"
)

type CreatePeriodRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r CreatePeriodRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if r.Year < 2000 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be a plausible year"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PeriodResponse struct {
	ID        string     `json:"id"`
	Ref       string     `json:"ref"`
	Month     int        `json:"month"`
	Year      int        `json:"year"`
	Status    Status     `json:"status"`
	LockedAt  *time.Time `json:"locked_at,omitempty"`
	PostedAt  *time.Time `json:"posted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type LockResult struct {
	LockedAt       time.Time `json:"locked_at"`
	PayslipsLocked int       `json:"payslips_locked"`
}

type UnlockResult struct {
	Unlocked bool `json:"unlocked"`
}

type PostResult struct {
	LedgerEntryID string          `json:"ledger_entry_id"`
	Number        string          `json:"number"`
	DebitTotal    decimal.Decimal `json:"debit_total"`
	CreditTotal   decimal.Decimal `json:"credit_total"`
}

type ReverseResult struct {
	LedgerEntryID     string          `json:"ledger_entry_id"`
	ReversedLineCount int             `json:"reversed_line_count"`
	DebitTotal        decimal.Decimal `json:"debit_total"`
	CreditTotal       decimal.Decimal `json:"credit_total"`
}

type SettleRequest struct {
	AccountNumber string `json:"account_number,omitempty"`
	DryRun        bool   `json:"dry_run,omitempty"`
}

type AuditMismatch struct {
	AccountNumber string          `json:"account_number"`
	Label         string          `json:"label"`
	Expected      decimal.Decimal `json:"expected"`
	Actual        decimal.Decimal `json:"actual"`
	Diff          decimal.Decimal `json:"diff"`
}

type AuditResult struct {
	Balanced    bool            `json:"balanced"`
	DebitTotal  decimal.Decimal `json:"debit_total"`
	CreditTotal decimal.Decimal `json:"credit_total"`
	Mismatches  []AuditMismatch `json:"mismatches"`
}

type SettleResult struct {
	DebitTotal  decimal.Decimal `json:"debit_total"`
	CreditTotal decimal.Decimal `json:"credit_total"`
	Persisted   bool            `json:"persisted"`
}
