package posting

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mosala-erp/payroll-backend-go/internal/domain/ledger"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/payslip"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/period"
)

type auditKey struct {
	accountNumber string
	kind          string
}

// expectedPostings recomputes, from the payslip lines alone, the signed
// total each account and kind should carry on the ledger. Debits count
// positive, credits negative.
func expectedPostings(slips []payslip.Payslip) (map[auditKey]decimal.Decimal, error) {
	expected := make(map[auditKey]decimal.Decimal)
	add := func(l leg, amount decimal.Decimal) {
		key := auditKey{accountNumber: l.Account.Number, kind: l.Kind}
		if l.Direction == ledger.Debit {
			expected[key] = expected[key].Add(amount)
		} else {
			expected[key] = expected[key].Sub(amount)
		}
	}
	for _, ps := range slips {
		for _, line := range ps.Lines {
			legs, ok := legsByCode[line.Code]
			if !ok {
				return nil, fmt.Errorf("no ledger mapping for payslip line code %s", line.Code)
			}
			for _, l := range legs {
				add(l, line.Amount.Abs())
			}
		}
		add(netPayLeg, ps.Net)
	}
	return expected, nil
}

// actualPostings folds ledger entries into the same signed shape as
// expectedPostings.
func actualPostings(entries []ledger.Entry) map[auditKey]decimal.Decimal {
	actual := make(map[auditKey]decimal.Decimal)
	for _, e := range entries {
		for _, l := range e.Lines {
			key := auditKey{accountNumber: l.AccountNumber, kind: l.Kind}
			if l.Direction == ledger.Debit {
				actual[key] = actual[key].Add(l.Amount)
			} else {
				actual[key] = actual[key].Sub(l.Amount)
			}
		}
	}
	return actual
}

// AuditPeriodEntries compares what the payslips say should be on the
// ledger with what actually is, account by account and kind by kind.
func AuditPeriodEntries(slips []payslip.Payslip, entries []ledger.Entry) (period.AuditResult, error) {
	expected, err := expectedPostings(slips)
	if err != nil {
		return period.AuditResult{}, err
	}
	actual := actualPostings(entries)

	keys := make(map[auditKey]bool, len(expected)+len(actual))
	for k := range expected {
		keys[k] = true
	}
	for k := range actual {
		keys[k] = true
	}

	result := period.AuditResult{}
	for _, e := range entries {
		debit, credit := e.DebitCredit()
		result.DebitTotal = result.DebitTotal.Add(debit)
		result.CreditTotal = result.CreditTotal.Add(credit)
	}

	for key := range keys {
		want := expected[key]
		got := actual[key]
		if want.Equal(got) {
			continue
		}
		result.Mismatches = append(result.Mismatches, period.AuditMismatch{
			AccountNumber: key.accountNumber,
			Label:         key.kind,
			Expected:      want,
			Actual:        got,
			Diff:          got.Sub(want),
		})
	}
	sort.Slice(result.Mismatches, func(i, j int) bool {
		a, b := result.Mismatches[i], result.Mismatches[j]
		if a.AccountNumber != b.AccountNumber {
			return a.AccountNumber < b.AccountNumber
		}
		return a.Label < b.Label
	})
	result.Balanced = len(result.Mismatches) == 0 && result.DebitTotal.Equal(result.CreditTotal)
	return result, nil
}
