package posting

import (
	"github.com/mosala-erp/payroll-backend-go/internal/domain/ledger"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/payslip"
)

// Line kinds stamped on ledger entry lines. The audit uses them to tell
// apart postings that share an account, such as employee and employer
// CNSS on the contributions payable account.
const (
	KindSalaryExpense         = "SALARY_EXPENSE"
	KindEmployerSocialExpense = "EMPLOYER_SOCIAL_EXPENSE"
	KindWagesPayable          = "WAGES_PAYABLE"
	KindEmployeeWithholding   = "EMPLOYEE_SOCIAL_WITHHOLDING"
	KindEmployerWithholding   = "EMPLOYER_SOCIAL_WITHHOLDING"
	KindIncomeTaxWithholding  = "INCOME_TAX_WITHHOLDING"
	KindOtherPayrollLiability = "OTHER_PAYROLL_LIABILITY"
	KindPayrollSettlement     = "PAYROLL_SETTLEMENT"
)

type accountDef struct {
	Number string
	Label  string
}

// Chart positions used by payroll postings (OHADA style numbering).
var (
	acctWages          = accountDef{"661100", "Wages and salaries"}
	acctBonuses        = accountDef{"661200", "Bonuses and overtime"}
	acctAllowances     = accountDef{"661300", "Staff allowances"}
	acctEmployerCharge = accountDef{"664100", "Employer social contributions"}
	acctNetPay         = accountDef{"422000", "Staff, net pay payable"}
	acctOtherDeduction = accountDef{"427000", "Staff, other deductions"}
	acctCNSS           = accountDef{"433100", "CNSS payable"}
	acctONEM           = accountDef{"433200", "ONEM payable"}
	acctINPP           = accountDef{"433300", "INPP payable"}
	acctIPR            = accountDef{"442100", "IPR payable"}

	// DefaultBankAccount settles net pay when no account is given.
	DefaultBankAccount = accountDef{"521000", "Bank"}
)

type leg struct {
	Direction ledger.Direction
	Account   accountDef
	Kind      string
	// CarryCostCenter keeps the payslip line's cost center on the leg.
	CarryCostCenter bool
}

// legsByCode maps each payslip line code to its ledger legs. Amounts are
// taken as absolute values; deduction lines are negative on the payslip
// but post as positive credits.
var legsByCode = map[payslip.LineCode][]leg{
	payslip.CodeBase: {
		{Direction: ledger.Debit, Account: acctWages, Kind: KindSalaryExpense, CarryCostCenter: true},
	},
	payslip.CodePrime: {
		{Direction: ledger.Debit, Account: acctBonuses, Kind: KindSalaryExpense, CarryCostCenter: true},
	},
	payslip.CodeOT: {
		{Direction: ledger.Debit, Account: acctBonuses, Kind: KindSalaryExpense, CarryCostCenter: true},
	},
	payslip.CodeAlloc: {
		{Direction: ledger.Debit, Account: acctAllowances, Kind: KindSalaryExpense, CarryCostCenter: true},
	},
	payslip.CodeCNSSEmp: {
		{Direction: ledger.Credit, Account: acctCNSS, Kind: KindEmployeeWithholding},
	},
	payslip.CodeIPR: {
		{Direction: ledger.Credit, Account: acctIPR, Kind: KindIncomeTaxWithholding},
	},
	payslip.CodeRetenue: {
		{Direction: ledger.Credit, Account: acctOtherDeduction, Kind: KindOtherPayrollLiability},
	},
	payslip.CodeCNSSEr: {
		{Direction: ledger.Debit, Account: acctEmployerCharge, Kind: KindEmployerSocialExpense},
		{Direction: ledger.Credit, Account: acctCNSS, Kind: KindEmployerWithholding},
	},
	payslip.CodeONEM: {
		{Direction: ledger.Debit, Account: acctEmployerCharge, Kind: KindEmployerSocialExpense},
		{Direction: ledger.Credit, Account: acctONEM, Kind: KindEmployerWithholding},
	},
	payslip.CodeINPP: {
		{Direction: ledger.Debit, Account: acctEmployerCharge, Kind: KindEmployerSocialExpense},
		{Direction: ledger.Credit, Account: acctINPP, Kind: KindEmployerWithholding},
	},
}

// netPayLeg credits the net amount owed to staff. It has no payslip line
// code; the builder adds it from the payslip's net total.
var netPayLeg = leg{Direction: ledger.Credit, Account: acctNetPay, Kind: KindWagesPayable}
