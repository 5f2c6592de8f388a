package posting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosala-erp/payroll-backend-go/internal/domain/ledger"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/payslip"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/period"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testPeriod() period.Period {
	return period.Period{ID: "per-1", Ref: "PAY-2026-08", Month: 8, Year: 2026, Status: period.StatusLocked}
}

// testPayslip mirrors what the calculation engine emits: deductions negative,
// employer charges positive but outside the net.
func testPayslip(employeeID string) payslip.Payslip {
	return payslip.Payslip{
		ID:         "ps-" + employeeID,
		PeriodID:   "per-1",
		EmployeeID: employeeID,
		Gross:      dec("1100"),
		Net:        dec("965"),
		Currency:   "CDF",
		Lines: []payslip.Line{
			{Code: payslip.CodeBase, Label: "Salaire de base", Amount: dec("1000"), Position: 10},
			{Code: payslip.CodePrime, Label: "Prime", Amount: dec("100"), Position: 20},
			{Code: payslip.CodeAlloc, Label: "Transport", Amount: dec("50"), Position: 30},
			{Code: payslip.CodeCNSSEmp, Label: "CNSS part salarié", Amount: dec("-55"), Position: 40},
			{Code: payslip.CodeIPR, Label: "IPR (mensuel)", Amount: dec("-100"), Position: 50},
			{Code: payslip.CodeRetenue, Label: "Avance", Amount: dec("-30"), Position: 60},
			{Code: payslip.CodeCNSSEr, Label: "CNSS part employeur", Amount: dec("55"), Position: 70},
			{Code: payslip.CodeONEM, Label: "ONEM", Amount: dec("5.5"), Position: 80},
			{Code: payslip.CodeINPP, Label: "INPP", Amount: dec("33"), Position: 90},
		},
	}
}

func TestBuildPeriodEntryBalanced(t *testing.T) {
	entry, err := BuildPeriodEntry(testPeriod(), []payslip.Payslip{testPayslip("e1")}, time.Now())
	require.NoError(t, err)

	assert.True(t, entry.Balanced())
	debit, credit := entry.DebitCredit()
	assert.True(t, debit.Equal(dec("1243.5")), "debit = %s", debit)
	assert.True(t, credit.Equal(dec("1243.5")), "credit = %s", credit)
	assert.Equal(t, ledger.SourcePayroll, entry.SourceType)
	assert.Equal(t, "per-1", entry.SourceID)
}

func TestBuildPeriodEntryAggregatesAcrossPayslips(t *testing.T) {
	slips := []payslip.Payslip{testPayslip("e1"), testPayslip("e2")}
	entry, err := BuildPeriodEntry(testPeriod(), slips, time.Now())
	require.NoError(t, err)

	assert.True(t, entry.Balanced())

	// Two identical payslips collapse into the same aggregated lines, with
	// doubled amounts, not twice the line count.
	single, err := BuildPeriodEntry(testPeriod(), slips[:1], time.Now())
	require.NoError(t, err)
	assert.Len(t, entry.Lines, len(single.Lines))

	var wages decimal.Decimal
	for _, l := range entry.Lines {
		if l.AccountNumber == acctWages.Number {
			wages = l.Amount
		}
	}
	assert.True(t, wages.Equal(dec("2000")), "wages = %s", wages)

	var netPay decimal.Decimal
	for _, l := range entry.Lines {
		if l.AccountNumber == acctNetPay.Number {
			require.Equal(t, ledger.Credit, l.Direction)
			netPay = l.Amount
		}
	}
	assert.True(t, netPay.Equal(dec("1930")), "net pay = %s", netPay)
}

func TestBuildPeriodEntryCostCenterSplit(t *testing.T) {
	ccA, ccB := "cc-a", "cc-b"
	ps := testPayslip("e1")
	ps.Lines[0].CostCenterID = &ccA

	other := testPayslip("e2")
	other.Lines[0].CostCenterID = &ccB

	entry, err := BuildPeriodEntry(testPeriod(), []payslip.Payslip{ps, other}, time.Now())
	require.NoError(t, err)
	assert.True(t, entry.Balanced())

	// Base salary expense stays split per cost center.
	var wagesLines []ledger.EntryLine
	for _, l := range entry.Lines {
		if l.AccountNumber == acctWages.Number {
			wagesLines = append(wagesLines, l)
		}
	}
	require.Len(t, wagesLines, 2)
	for _, l := range wagesLines {
		require.NotNil(t, l.CostCenterID)
		assert.True(t, l.Amount.Equal(dec("1000")))
	}
}

func TestBuildPeriodEntryUnknownCode(t *testing.T) {
	ps := testPayslip("e1")
	ps.Lines = append(ps.Lines, payslip.Line{Code: payslip.LineCode("MYSTERY"), Amount: dec("1")})

	_, err := BuildPeriodEntry(testPeriod(), []payslip.Payslip{ps}, time.Now())
	assert.Error(t, err)
}

func TestBuildPeriodEntryEveryCodeMapped(t *testing.T) {
	codes := []payslip.LineCode{
		payslip.CodeBase, payslip.CodePrime, payslip.CodeOT, payslip.CodeAlloc,
		payslip.CodeCNSSEmp, payslip.CodeIPR, payslip.CodeRetenue,
		payslip.CodeCNSSEr, payslip.CodeONEM, payslip.CodeINPP,
	}
	for _, code := range codes {
		_, ok := legsByCode[code]
		assert.True(t, ok, "code %s has no ledger mapping", code)
	}
}

func TestBuildSettlementEntry(t *testing.T) {
	entry := BuildSettlementEntry(testPeriod(), dec("965"), DefaultBankAccount, time.Now())

	require.Len(t, entry.Lines, 2)
	assert.True(t, entry.Balanced())
	assert.Equal(t, ledger.SourcePayrollSettlement, entry.SourceType)

	assert.Equal(t, acctNetPay.Number, entry.Lines[0].AccountNumber)
	assert.Equal(t, ledger.Debit, entry.Lines[0].Direction)
	assert.Equal(t, DefaultBankAccount.Number, entry.Lines[1].AccountNumber)
	assert.Equal(t, ledger.Credit, entry.Lines[1].Direction)
}

func TestBuildReversalEntry(t *testing.T) {
	src, err := BuildPeriodEntry(testPeriod(), []payslip.Payslip{testPayslip("e1")}, time.Now())
	require.NoError(t, err)
	src.ID = "entry-1"
	src.Number = "JRN-000001"

	rev := BuildReversalEntry(testPeriod(), src, time.Now())

	require.NotNil(t, rev.ReversesEntryID)
	assert.Equal(t, "entry-1", *rev.ReversesEntryID)
	assert.Equal(t, ledger.SourcePayrollReversal, rev.SourceType)
	assert.True(t, rev.Balanced())
	require.Len(t, rev.Lines, len(src.Lines))

	// Each account nets to zero across the pair.
	net := make(map[string]decimal.Decimal)
	for _, e := range []ledger.Entry{src, rev} {
		for _, l := range e.Lines {
			if l.Direction == ledger.Debit {
				net[l.AccountNumber] = net[l.AccountNumber].Add(l.Amount)
			} else {
				net[l.AccountNumber] = net[l.AccountNumber].Sub(l.Amount)
			}
		}
	}
	for number, total := range net {
		assert.True(t, total.IsZero(), "account %s nets to %s", number, total)
	}
}
