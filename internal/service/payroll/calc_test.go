package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosala-erp/payroll-backend-go/internal/domain/employee"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/payslip"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/refdata"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testSchemes() map[string]refdata.ContributionScheme {
	return map[string]refdata.ContributionScheme{
		SchemeCNSS: {Code: SchemeCNSS, EmployeeRate: dec("0.05"), EmployerRate: dec("0.05"), Active: true},
		SchemeONEM: {Code: SchemeONEM, EmployerRate: dec("0.005"), Active: true},
		SchemeINPP: {Code: SchemeINPP, EmployerRate: dec("0.03"), Active: true},
	}
}

func testTaxRule() refdata.TaxRule {
	max1 := dec("5000")
	return refdata.TaxRule{
		Code: "IPR-TEST",
		Brackets: []refdata.TaxBracket{
			{MinAnnual: dec("0"), MaxAnnual: &max1, Rate: dec("0")},
			{MinAnnual: dec("5000"), MaxAnnual: nil, Rate: dec("0.2")},
		},
		ProfessionalExpenseRate: dec("0.25"),
	}
}

func baseInput() CalcInput {
	return CalcInput{
		Employee: employee.Employee{
			ID:         "emp-1",
			FirstName:  "Awa",
			LastName:   "Kalombo",
			Status:     employee.EmploymentStatusActive,
			BaseSalary: dec("1000"),
			Currency:   "CDF",
		},
		Schemes:            testSchemes(),
		TaxRule:            testTaxRule(),
		FxRate:             dec("1"),
		LedgerCurrency:     "CDF",
		HoursPerDay:        dec("8"),
		OvertimeMultiplier: dec("1.5"),
	}
}

func lineByCode(t *testing.T, lines []payslip.Line, code payslip.LineCode) payslip.Line {
	t.Helper()
	for _, l := range lines {
		if l.Code == code {
			return l
		}
	}
	t.Fatalf("no line with code %s", code)
	return payslip.Line{}
}

func TestCalculateFullMonth(t *testing.T) {
	res, err := Calculate(baseInput())
	require.NoError(t, err)

	assert.True(t, res.Gross.Equal(dec("1000")), "gross = %s", res.Gross)

	cnss := lineByCode(t, res.Lines, payslip.CodeCNSSEmp)
	assert.True(t, cnss.Amount.Equal(dec("-50")), "cnss = %s", cnss.Amount)

	// taxable = (1000 - 50) * 0.75 = 712.50, annual 8550,
	// tax = (8550 - 5000) * 0.2 = 710, monthly 59.17
	ipr := lineByCode(t, res.Lines, payslip.CodeIPR)
	assert.True(t, ipr.Amount.Equal(dec("-59.17")), "ipr = %s", ipr.Amount)

	assert.True(t, res.Net.Equal(dec("890.83")), "net = %s", res.Net)
	assert.True(t, res.EmployerCharges.Equal(dec("85")), "employer charges = %s", res.EmployerCharges)
	assert.Equal(t, "CDF", res.Currency)
}

func TestCalculateNetInvariant(t *testing.T) {
	in := baseInput()
	in.Variables = []employee.Variable{
		{Kind: employee.VariableBonus, Label: "Prime de fin de mois", Amount: dec("100")},
		{Kind: employee.VariableAllowance, Label: "Transport", Amount: dec("50")},
		{Kind: employee.VariableDeduction, Label: "Avance sur salaire", Amount: dec("30")},
	}

	res, err := Calculate(in)
	require.NoError(t, err)

	// net = gross + allowances + deduction lines (already negative)
	sum := decimal.Zero
	for _, l := range res.Lines {
		switch l.Code {
		case payslip.CodeCNSSEr, payslip.CodeONEM, payslip.CodeINPP:
		default:
			sum = sum.Add(l.Amount)
		}
	}
	assert.True(t, res.Net.Equal(sum), "net %s != line sum %s", res.Net, sum)
	assert.True(t, res.Gross.Equal(dec("1100")), "gross = %s", res.Gross)

	retenue := lineByCode(t, res.Lines, payslip.CodeRetenue)
	assert.True(t, retenue.Amount.IsNegative())
}

func TestCalculateDeterministic(t *testing.T) {
	in := baseInput()
	in.Attendance = &employee.Attendance{DaysWorked: dec("20"), WorkingDays: dec("22"), OvertimeHours: dec("6")}
	in.Variables = []employee.Variable{
		{Kind: employee.VariableBonus, Label: "B", Amount: dec("10")},
		{Kind: employee.VariableBonus, Label: "A", Amount: dec("20")},
	}

	first, err := Calculate(in)
	require.NoError(t, err)
	second, err := Calculate(in)
	require.NoError(t, err)

	require.Len(t, second.Lines, len(first.Lines))
	for i := range first.Lines {
		assert.Equal(t, first.Lines[i].Code, second.Lines[i].Code)
		assert.Equal(t, first.Lines[i].Label, second.Lines[i].Label)
		assert.Equal(t, first.Lines[i].Amount.String(), second.Lines[i].Amount.String())
		assert.Equal(t, first.Lines[i].Position, second.Lines[i].Position)
	}
	assert.Equal(t, first.Net.String(), second.Net.String())

	// Bonuses come out sorted by label regardless of input order.
	var primes []string
	for _, l := range first.Lines {
		if l.Code == payslip.CodePrime {
			primes = append(primes, l.Label)
		}
	}
	assert.Equal(t, []string{"A", "B"}, primes)
}

func TestCalculateProRata(t *testing.T) {
	in := baseInput()
	in.Attendance = &employee.Attendance{DaysWorked: dec("15"), WorkingDays: dec("30")}

	res, err := Calculate(in)
	require.NoError(t, err)

	base := lineByCode(t, res.Lines, payslip.CodeBase)
	assert.True(t, base.Amount.Equal(dec("500")), "base = %s", base.Amount)
}

func TestCalculateOvertime(t *testing.T) {
	in := baseInput()
	in.Attendance = &employee.Attendance{DaysWorked: dec("20"), WorkingDays: dec("20"), OvertimeHours: dec("10")}

	res, err := Calculate(in)
	require.NoError(t, err)

	// hourly = 1000 / (20 * 8) = 6.25; 6.25 * 10 * 1.5 = 93.75
	ot := lineByCode(t, res.Lines, payslip.CodeOT)
	assert.True(t, ot.Amount.Equal(dec("93.75")), "overtime = %s", ot.Amount)
	assert.True(t, res.Gross.Equal(dec("1093.75")), "gross = %s", res.Gross)
}

func TestCalculateCNSSCap(t *testing.T) {
	in := baseInput()
	schemes := testSchemes()
	cnss := schemes[SchemeCNSS]
	cnss.MonthlyCap = dec("500")
	schemes[SchemeCNSS] = cnss
	in.Schemes = schemes

	res, err := Calculate(in)
	require.NoError(t, err)

	line := lineByCode(t, res.Lines, payslip.CodeCNSSEmp)
	assert.True(t, line.Amount.Equal(dec("-25")), "capped cnss = %s", line.Amount)
}

func TestCalculateMinimumTaxFloor(t *testing.T) {
	in := baseInput()
	rule := testTaxRule()
	rule.MinimumMonthlyTax = dec("100")
	in.TaxRule = rule

	res, err := Calculate(in)
	require.NoError(t, err)

	// Computed tax 59.17 is positive but below the floor.
	ipr := lineByCode(t, res.Lines, payslip.CodeIPR)
	assert.True(t, ipr.Amount.Equal(dec("-100")), "floored ipr = %s", ipr.Amount)
}

func TestCalculateTaxCapBoundsFloor(t *testing.T) {
	in := baseInput()
	rule := testTaxRule()
	rule.CapRate = dec("0.3")
	rule.MinimumMonthlyTax = dec("300")
	in.TaxRule = rule

	res, err := Calculate(in)
	require.NoError(t, err)

	// taxable 712.50, cap 30% = 213.75; the 300 floor must not exceed it.
	ipr := lineByCode(t, res.Lines, payslip.CodeIPR)
	assert.True(t, ipr.Amount.Equal(dec("-213.75")), "capped ipr = %s", ipr.Amount)
}

func TestCalculateZeroTaxNoFloor(t *testing.T) {
	in := baseInput()
	in.Employee.BaseSalary = dec("100")
	rule := testTaxRule()
	rule.MinimumMonthlyTax = dec("100")
	in.TaxRule = rule

	res, err := Calculate(in)
	require.NoError(t, err)

	// Annual taxable stays in the zero bracket; the floor must not create tax.
	ipr := lineByCode(t, res.Lines, payslip.CodeIPR)
	assert.True(t, ipr.Amount.IsZero(), "ipr = %s", ipr.Amount)
}

func TestCalculateFxConversion(t *testing.T) {
	in := baseInput()
	in.Employee.Currency = "USD"
	in.Employee.BaseSalary = dec("100")
	in.FxRate = dec("2800")

	res, err := Calculate(in)
	require.NoError(t, err)

	base := lineByCode(t, res.Lines, payslip.CodeBase)
	assert.True(t, base.Amount.Equal(dec("280000")), "converted base = %s", base.Amount)
	assert.Equal(t, "CDF", res.Currency)

	// Totals rebuilt from converted lines keep the net invariant intact.
	sum := decimal.Zero
	for _, l := range res.Lines {
		switch l.Code {
		case payslip.CodeCNSSEr, payslip.CodeONEM, payslip.CodeINPP:
		default:
			sum = sum.Add(l.Amount)
		}
	}
	assert.True(t, res.Net.Equal(sum), "net %s != line sum %s", res.Net, sum)
}

func TestCalculateFamilyAllocation(t *testing.T) {
	in := baseInput()
	in.Employee.Children = 5
	in.Family = refdata.FamilyAllowance{AmountPerChild: dec("10"), MaxChildren: 3}

	res, err := Calculate(in)
	require.NoError(t, err)

	alloc := lineByCode(t, res.Lines, payslip.CodeAlloc)
	assert.True(t, alloc.Amount.Equal(dec("30")), "family allocation = %s", alloc.Amount)
	// Allowances raise net but never gross.
	assert.True(t, res.Gross.Equal(dec("1000")), "gross = %s", res.Gross)
}

func TestCalculateMissingConfig(t *testing.T) {
	in := baseInput()
	delete(in.Schemes, SchemeCNSS)
	_, err := Calculate(in)
	assert.ErrorIs(t, err, refdata.ErrMissingConfig)

	in = baseInput()
	in.TaxRule.Brackets = nil
	_, err = Calculate(in)
	assert.ErrorIs(t, err, refdata.ErrMissingConfig)

	in = baseInput()
	in.FxRate = decimal.Zero
	_, err = Calculate(in)
	assert.ErrorIs(t, err, refdata.ErrMissingConfig)
}
