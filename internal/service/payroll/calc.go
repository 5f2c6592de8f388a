package payroll

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mosala-erp/payroll-backend-go/internal/domain/employee"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/payslip"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/refdata"
)

// Contribution scheme codes the engine requires.
const (
	SchemeCNSS = "CNSS"
	SchemeONEM = "ONEM"
	SchemeINPP = "INPP"
)

var (
	twelve = decimal.NewFromInt(12)
	one    = decimal.NewFromInt(1)
)

// CalcInput carries everything one payslip computation needs. The engine
// reads nothing else: no clock, no randomness, no store.
type CalcInput struct {
	Employee   employee.Employee
	Attendance *employee.Attendance
	Variables  []employee.Variable

	Schemes map[string]refdata.ContributionScheme
	TaxRule refdata.TaxRule
	Family  refdata.FamilyAllowance

	// FxRate converts the employee's contract currency into the ledger
	// currency. One when they are the same. The bareme and the CNSS cap are
	// expressed in the ledger currency.
	FxRate         decimal.Decimal
	LedgerCurrency string

	HoursPerDay        decimal.Decimal
	OvertimeMultiplier decimal.Decimal
}

// CalcResult is the computed payslip before persistence. All amounts are in
// the ledger currency, rounded to the currency minor unit.
type CalcResult struct {
	Gross           decimal.Decimal
	Net             decimal.Decimal
	EmployerCharges decimal.Decimal
	Currency        string
	Lines           []payslip.Line
}

// Calculate maps one employee's inputs to a payslip. Deterministic: the same
// input yields byte-identical lines.
func Calculate(in CalcInput) (CalcResult, error) {
	fx := in.FxRate
	if fx.IsZero() {
		return CalcResult{}, refdata.MissingConfig("fx rate for " + in.Employee.Currency + "/" + in.LedgerCurrency)
	}

	cnss, ok := in.Schemes[SchemeCNSS]
	if !ok {
		return CalcResult{}, refdata.MissingConfig("contribution scheme CNSS")
	}
	onem, ok := in.Schemes[SchemeONEM]
	if !ok {
		return CalcResult{}, refdata.MissingConfig("contribution scheme ONEM")
	}
	inpp, ok := in.Schemes[SchemeINPP]
	if !ok {
		return CalcResult{}, refdata.MissingConfig("contribution scheme INPP")
	}
	if len(in.TaxRule.Brackets) == 0 {
		return CalcResult{}, refdata.MissingConfig("tax rule brackets")
	}

	salary := in.Employee.BaseSalary
	var lines []payslip.Line
	pos := 0
	addLine := func(code payslip.LineCode, label string, amount decimal.Decimal, base *decimal.Decimal, ccID *string, meta map[string]any) {
		pos += 10
		lines = append(lines, payslip.Line{
			Code:         code,
			Label:        label,
			Amount:       amount,
			BaseAmount:   base,
			Position:     pos,
			CostCenterID: ccID,
			Meta:         meta,
		})
	}

	// Base salary, pro-rated by attendance when present.
	base := salary
	var baseMeta map[string]any
	if in.Attendance != nil && in.Attendance.WorkingDays.IsPositive() {
		base = salary.Mul(in.Attendance.DaysWorked).Div(in.Attendance.WorkingDays).Round(2)
		baseMeta = map[string]any{
			"days_worked":  in.Attendance.DaysWorked.String(),
			"working_days": in.Attendance.WorkingDays.String(),
		}
	}
	addLine(payslip.CodeBase, "Salaire de base", base, nil, nil, baseMeta)

	// Overtime from the full contractual salary's hourly rate.
	overtime := decimal.Zero
	if in.Attendance != nil && in.Attendance.OvertimeHours.IsPositive() {
		workingDays := in.Attendance.WorkingDays
		if !workingDays.IsPositive() {
			workingDays = decimal.NewFromInt(30)
		}
		hourly := salary.Div(workingDays.Mul(in.HoursPerDay))
		overtime = hourly.Mul(in.Attendance.OvertimeHours).Mul(in.OvertimeMultiplier).Round(2)
		addLine(payslip.CodeOT, "Heures supplémentaires", overtime, nil, nil, map[string]any{
			"overtime_hours": in.Attendance.OvertimeHours.String(),
			"multiplier":     in.OvertimeMultiplier.String(),
		})
	}

	// Ad hoc variables: bonuses into gross, allowances outside gross,
	// deductions against net. Sorted for a stable line order.
	vars := make([]employee.Variable, len(in.Variables))
	copy(vars, in.Variables)
	sort.SliceStable(vars, func(i, j int) bool {
		if vars[i].Kind != vars[j].Kind {
			return vars[i].Kind < vars[j].Kind
		}
		return vars[i].Label < vars[j].Label
	})
	primes := decimal.Zero
	allowances := decimal.Zero
	retenues := decimal.Zero
	for _, v := range vars {
		amt := v.Amount.Round(2)
		switch v.Kind {
		case employee.VariableBonus:
			primes = primes.Add(amt)
			addLine(payslip.CodePrime, v.Label, amt, nil, v.CostCenterID, nil)
		case employee.VariableAllowance:
			allowances = allowances.Add(amt)
			addLine(payslip.CodeAlloc, v.Label, amt, nil, v.CostCenterID, nil)
		case employee.VariableDeduction:
			retenues = retenues.Add(amt)
			addLine(payslip.CodeRetenue, v.Label, amt.Neg(), nil, v.CostCenterID, nil)
		}
	}

	// Family allocation: per-child non-taxable allowance.
	if in.Family.AmountPerChild.IsPositive() && in.Employee.Children > 0 {
		children := in.Employee.Children
		if in.Family.MaxChildren > 0 && children > in.Family.MaxChildren {
			children = in.Family.MaxChildren
		}
		// Configured per child in ledger currency; bring into contract currency.
		alloc := in.Family.AmountPerChild.Mul(decimal.NewFromInt(int64(children))).Div(fx).Round(2)
		allowances = allowances.Add(alloc)
		addLine(payslip.CodeAlloc, "Allocations familiales", alloc, nil, nil, map[string]any{
			"children": children,
		})
	}

	gross := base.Add(primes).Add(overtime)

	// Employee CNSS on gross capped in ledger currency.
	cnssBase := gross
	if cnss.MonthlyCap.IsPositive() {
		capContract := cnss.MonthlyCap.Div(fx)
		if cnssBase.GreaterThan(capContract) {
			cnssBase = capContract
		}
	}
	cnssEmp := cnssBase.Mul(cnss.EmployeeRate).Round(2)
	grossRef := gross.Round(2)
	addLine(payslip.CodeCNSSEmp, "CNSS part salarié", cnssEmp.Neg(), &grossRef, nil, map[string]any{
		"rate": cnss.EmployeeRate.String(),
	})

	// IPR on the taxable base after CNSS and professional expenses.
	profExpense := gross.Sub(cnssEmp).Mul(in.TaxRule.ProfessionalExpenseRate)
	taxable := gross.Sub(cnssEmp).Sub(profExpense)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	ipr := computeIPR(taxable, fx, in.TaxRule)
	taxableRef := taxable.Round(2)
	addLine(payslip.CodeIPR, "IPR (mensuel)", ipr.Neg(), &taxableRef, nil, map[string]any{
		"taxable_ledger": taxable.Mul(fx).Round(2).String(),
		"fx_rate":        fx.String(),
	})

	// Employer-side contributions: lines on the payslip, outside the net.
	cnssEr := gross.Mul(cnss.EmployerRate).Round(2)
	addLine(payslip.CodeCNSSEr, "CNSS part employeur", cnssEr, &grossRef, nil, map[string]any{"rate": cnss.EmployerRate.String()})
	onemAmt := gross.Mul(onem.EmployerRate).Round(2)
	addLine(payslip.CodeONEM, "ONEM", onemAmt, &grossRef, nil, map[string]any{"rate": onem.EmployerRate.String()})
	inppAmt := gross.Mul(inpp.EmployerRate).Round(2)
	addLine(payslip.CodeINPP, "INPP", inppAmt, &grossRef, nil, map[string]any{"rate": inpp.EmployerRate.String()})

	// Convert every line into the ledger currency, then rebuild the totals
	// from the converted lines so the net invariant holds after rounding.
	if !fx.Equal(one) {
		for i := range lines {
			lines[i].Amount = lines[i].Amount.Mul(fx).Round(2)
			if lines[i].BaseAmount != nil {
				converted := lines[i].BaseAmount.Mul(fx).Round(2)
				lines[i].BaseAmount = &converted
			}
		}
	} else {
		for i := range lines {
			lines[i].Amount = lines[i].Amount.Round(2)
		}
	}

	var grossOut, net, employerCharges decimal.Decimal
	for _, l := range lines {
		switch l.Code {
		case payslip.CodeBase, payslip.CodePrime, payslip.CodeOT:
			grossOut = grossOut.Add(l.Amount)
			net = net.Add(l.Amount)
		case payslip.CodeAlloc:
			net = net.Add(l.Amount)
		case payslip.CodeCNSSEmp, payslip.CodeIPR, payslip.CodeRetenue:
			net = net.Add(l.Amount)
		case payslip.CodeCNSSEr, payslip.CodeONEM, payslip.CodeINPP:
			employerCharges = employerCharges.Add(l.Amount)
		}
	}

	return CalcResult{
		Gross:           grossOut,
		Net:             net,
		EmployerCharges: employerCharges,
		Currency:        in.LedgerCurrency,
		Lines:           lines,
	}, nil
}

// computeIPR applies the progressive bareme. The brackets are annual amounts
// in the ledger currency: the monthly taxable base is converted, annualized,
// taxed bracket by bracket, de-annualized, capped, floored, and converted
// back to the contract currency.
func computeIPR(taxableContract, fx decimal.Decimal, rule refdata.TaxRule) decimal.Decimal {
	taxable := taxableContract.Mul(fx)
	if !taxable.IsPositive() {
		return decimal.Zero
	}
	annual := taxable.Mul(twelve)

	tax := decimal.Zero
	prevUpper := decimal.Zero
	for _, b := range rule.Brackets {
		lower := prevUpper
		if b.MinAnnual.GreaterThan(lower) {
			lower = b.MinAnnual
		}
		upper := annual
		if b.MaxAnnual != nil && b.MaxAnnual.LessThan(annual) {
			upper = *b.MaxAnnual
		}
		if upper.GreaterThan(lower) {
			tax = tax.Add(upper.Sub(lower).Mul(b.Rate))
		}
		if b.MaxAnnual == nil || b.MaxAnnual.GreaterThanOrEqual(annual) {
			break
		}
		prevUpper = *b.MaxAnnual
	}

	monthly := tax.Div(twelve)
	if rule.MinimumMonthlyTax.IsPositive() && monthly.IsPositive() && monthly.LessThan(rule.MinimumMonthlyTax) {
		monthly = rule.MinimumMonthlyTax
	}
	// The cap and the taxable base bound the tax even when the floor raised it.
	if rule.CapRate.IsPositive() {
		cap := taxable.Mul(rule.CapRate)
		if monthly.GreaterThan(cap) {
			monthly = cap
		}
	}
	if monthly.GreaterThan(taxable) {
		monthly = taxable
	}
	return monthly.Div(fx).Round(2)
}
