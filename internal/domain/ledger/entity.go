package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	Debit  Direction = "DEBIT"
	Credit Direction = "CREDIT"
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Debit {
		return Credit
	}
	return Debit
}

// SourceType tags a ledger entry with the subsystem that produced it.
type SourceType string

const (
	SourcePayroll           SourceType = "PAYROLL"
	SourcePayrollReversal   SourceType = "PAYROLL_REVERSAL"
	SourcePayrollSettlement SourceType = "PAYROLL_SETTLEMENT"
)

type Account struct {
	ID     string
	Number string
	Label  string
}

type EntryLine struct {
	ID            string
	EntryID       string
	AccountID     string
	AccountNumber string
	Direction     Direction
	Amount        decimal.Decimal
	Kind          string
	CostCenterID  *string
}

// Entry - a balanced general journal entry. ReversesEntryID links a reversal
// to the entry it cancels.
type Entry struct {
	ID              string
	Number          string
	Date            time.Time
	SourceType      SourceType
	SourceID        string
	Description     string
	ReversesEntryID *string
	Lines           []EntryLine
	CreatedAt       time.Time
}

// DebitCredit returns the debit and credit totals of the entry's lines.
func (e Entry) DebitCredit() (debit, credit decimal.Decimal) {
	for _, l := range e.Lines {
		if l.Direction == Debit {
			debit = debit.Add(l.Amount)
		} else {
			credit = credit.Add(l.Amount)
		}
	}
	return debit, credit
}

// Balanced reports whether debit and credit totals are exactly equal.
func (e Entry) Balanced() bool {
	debit, credit := e.DebitCredit()
	return debit.Equal(credit)
}
