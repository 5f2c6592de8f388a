package posting

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mosala-erp/payroll-backend-go/internal/domain/ledger"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/payslip"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/period"
)

// aggKey groups legs that collapse into one entry line.
type aggKey struct {
	accountNumber string
	direction     ledger.Direction
	kind          string
	costCenter    string
}

type aggLine struct {
	account      accountDef
	direction    ledger.Direction
	kind         string
	costCenterID *string
	amount       decimal.Decimal
}

// BuildPeriodEntry aggregates all payslip lines of a period into one
// balanced journal entry. Account IDs are left blank; the caller resolves
// them before persisting. Returns ledger.ErrUnbalancedEntry if debits and
// credits diverge, which indicates a mapping defect.
func BuildPeriodEntry(p period.Period, slips []payslip.Payslip, date time.Time) (ledger.Entry, error) {
	agg := make(map[aggKey]*aggLine)

	add := func(l leg, amount decimal.Decimal, costCenterID *string) {
		if amount.IsZero() {
			return
		}
		cc := ""
		var ccID *string
		if l.CarryCostCenter && costCenterID != nil {
			cc = *costCenterID
			ccID = costCenterID
		}
		key := aggKey{accountNumber: l.Account.Number, direction: l.Direction, kind: l.Kind, costCenter: cc}
		if cur, ok := agg[key]; ok {
			cur.amount = cur.amount.Add(amount)
			return
		}
		agg[key] = &aggLine{
			account:      l.Account,
			direction:    l.Direction,
			kind:         l.Kind,
			costCenterID: ccID,
			amount:       amount,
		}
	}

	for _, ps := range slips {
		for _, line := range ps.Lines {
			legs, ok := legsByCode[line.Code]
			if !ok {
				return ledger.Entry{}, fmt.Errorf("no ledger mapping for payslip line code %s", line.Code)
			}
			for _, l := range legs {
				add(l, line.Amount.Abs(), line.CostCenterID)
			}
		}
		add(netPayLeg, ps.Net, nil)
	}

	lines := make([]ledger.EntryLine, 0, len(agg))
	for _, a := range agg {
		lines = append(lines, ledger.EntryLine{
			AccountNumber: a.account.Number,
			Direction:     a.direction,
			Amount:        a.amount,
			Kind:          a.kind,
			CostCenterID:  a.costCenterID,
		})
	}
	sortEntryLines(lines)

	entry := ledger.Entry{
		Date:        date,
		SourceType:  ledger.SourcePayroll,
		SourceID:    p.ID,
		Description: fmt.Sprintf("Payroll %s", p.Ref),
		Lines:       lines,
	}
	if !entry.Balanced() {
		// Return the entry so the caller can log the diverging totals.
		return entry, ledger.ErrUnbalancedEntry
	}
	return entry, nil
}

// BuildSettlementEntry moves the posted net pay liability to a money
// account. Debits net pay payable, credits the bank.
func BuildSettlementEntry(p period.Period, netTotal decimal.Decimal, bank accountDef, date time.Time) ledger.Entry {
	return ledger.Entry{
		Date:        date,
		SourceType:  ledger.SourcePayrollSettlement,
		SourceID:    p.ID,
		Description: fmt.Sprintf("Payroll settlement %s", p.Ref),
		Lines: []ledger.EntryLine{
			{AccountNumber: acctNetPay.Number, Direction: ledger.Debit, Amount: netTotal, Kind: KindPayrollSettlement},
			{AccountNumber: bank.Number, Direction: ledger.Credit, Amount: netTotal, Kind: KindPayrollSettlement},
		},
	}
}

// BuildReversalEntry mirrors a source entry with every line direction
// flipped, linked back through ReversesEntryID.
func BuildReversalEntry(p period.Period, src ledger.Entry, date time.Time) ledger.Entry {
	srcID := src.ID
	lines := make([]ledger.EntryLine, 0, len(src.Lines))
	for _, l := range src.Lines {
		lines = append(lines, ledger.EntryLine{
			AccountID:     l.AccountID,
			AccountNumber: l.AccountNumber,
			Direction:     l.Direction.Flip(),
			Amount:        l.Amount,
			Kind:          l.Kind,
			CostCenterID:  l.CostCenterID,
		})
	}
	return ledger.Entry{
		Date:            date,
		SourceType:      ledger.SourcePayrollReversal,
		SourceID:        p.ID,
		Description:     fmt.Sprintf("Reversal of %s (payroll %s)", src.Number, p.Ref),
		ReversesEntryID: &srcID,
		Lines:           lines,
	}
}

func sortEntryLines(lines []ledger.EntryLine) {
	sort.Slice(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.Direction != b.Direction {
			return a.Direction == ledger.Debit
		}
		if a.AccountNumber != b.AccountNumber {
			return a.AccountNumber < b.AccountNumber
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		ac, bc := "", ""
		if a.CostCenterID != nil {
			ac = *a.CostCenterID
		}
		if b.CostCenterID != nil {
			bc = *b.CostCenterID
		}
		return ac < bc
	})
}
