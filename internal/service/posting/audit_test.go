package posting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosala-erp/payroll-backend-go/internal/domain/ledger"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/payslip"
)

func TestAuditCleanPeriod(t *testing.T) {
	slips := []payslip.Payslip{testPayslip("e1"), testPayslip("e2")}
	entry, err := BuildPeriodEntry(testPeriod(), slips, time.Now())
	require.NoError(t, err)

	result, err := AuditPeriodEntries(slips, []ledger.Entry{entry})
	require.NoError(t, err)

	assert.True(t, result.Balanced)
	assert.Empty(t, result.Mismatches)
	assert.True(t, result.DebitTotal.Equal(result.CreditTotal))
}

func TestAuditDetectsTamperedAmount(t *testing.T) {
	slips := []payslip.Payslip{testPayslip("e1")}
	entry, err := BuildPeriodEntry(testPeriod(), slips, time.Now())
	require.NoError(t, err)

	// Shave the wages line after posting.
	for i := range entry.Lines {
		if entry.Lines[i].AccountNumber == acctWages.Number {
			entry.Lines[i].Amount = entry.Lines[i].Amount.Sub(dec("100"))
		}
	}

	result, err := AuditPeriodEntries(slips, []ledger.Entry{entry})
	require.NoError(t, err)

	assert.False(t, result.Balanced)
	require.Len(t, result.Mismatches, 1)
	m := result.Mismatches[0]
	assert.Equal(t, acctWages.Number, m.AccountNumber)
	assert.True(t, m.Diff.Equal(dec("-100")), "diff = %s", m.Diff)
	assert.True(t, m.Expected.Equal(dec("1000")))
	assert.True(t, m.Actual.Equal(dec("900")))
}

func TestAuditDetectsMissingEntry(t *testing.T) {
	slips := []payslip.Payslip{testPayslip("e1")}

	result, err := AuditPeriodEntries(slips, nil)
	require.NoError(t, err)

	assert.False(t, result.Balanced)
	assert.NotEmpty(t, result.Mismatches)
	// Every expected account shows up as a gap.
	for _, m := range result.Mismatches {
		assert.True(t, m.Actual.IsZero())
	}
}

func TestAuditSeparatesEmployeeAndEmployerCNSS(t *testing.T) {
	slips := []payslip.Payslip{testPayslip("e1")}
	entry, err := BuildPeriodEntry(testPeriod(), slips, time.Now())
	require.NoError(t, err)

	// Swap the kinds on the two CNSS credits; totals per account still match
	// but the per-kind comparison must flag both.
	for i := range entry.Lines {
		if entry.Lines[i].AccountNumber != acctCNSS.Number {
			continue
		}
		if entry.Lines[i].Kind == KindEmployeeWithholding {
			entry.Lines[i].Amount = entry.Lines[i].Amount.Add(dec("10"))
		} else {
			entry.Lines[i].Amount = entry.Lines[i].Amount.Sub(dec("10"))
		}
	}

	result, err := AuditPeriodEntries(slips, []ledger.Entry{entry})
	require.NoError(t, err)

	assert.False(t, result.Balanced)
	assert.Len(t, result.Mismatches, 2)
	for _, m := range result.Mismatches {
		assert.Equal(t, acctCNSS.Number, m.AccountNumber)
	}
}

func TestAuditBalancedFlagRequiresEqualTotals(t *testing.T) {
	slips := []payslip.Payslip{testPayslip("e1")}
	entry, err := BuildPeriodEntry(testPeriod(), slips, time.Now())
	require.NoError(t, err)

	result, err := AuditPeriodEntries(slips, []ledger.Entry{entry})
	require.NoError(t, err)
	require.True(t, result.Balanced)

	debit, credit := entry.DebitCredit()
	assert.True(t, result.DebitTotal.Equal(debit))
	assert.True(t, result.CreditTotal.Equal(credit))
}
