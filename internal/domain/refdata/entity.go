package refdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContributionScheme - statutory contribution configuration (CNSS, ONEM,
// INPP). Rates are fractions (0.05 = 5%). MonthlyCap caps the contribution
// base; zero means uncapped.
type ContributionScheme struct {
	ID           string
	Code         string
	Label        string
	EmployeeRate decimal.Decimal
	EmployerRate decimal.Decimal
	MonthlyCap   decimal.Decimal
	Active       bool
}

// TaxBracket - one progressive bracket over annual taxable income.
// MaxAnnual nil means unbounded.
type TaxBracket struct {
	MinAnnual decimal.Decimal  `json:"min_annual"`
	MaxAnnual *decimal.Decimal `json:"max_annual"`
	Rate      decimal.Decimal  `json:"rate"`
}

// TaxRule - the bareme: progressive brackets plus the statutory knobs the
// monthly computation needs.
type TaxRule struct {
	ID       string
	Code     string
	Brackets []TaxBracket
	// Professional-expense allowance as a fraction of (gross - employee CNSS).
	ProfessionalExpenseRate decimal.Decimal
	// Tax capped at this fraction of the monthly taxable base.
	CapRate decimal.Decimal
	// Floor applied when the computed tax is positive.
	MinimumMonthlyTax decimal.Decimal
	ValidFrom         time.Time
	Active            bool
}

// FxRate - conversion rate from Base to Quote currency valid at Date.
type FxRate struct {
	ID            string
	Date          time.Time
	BaseCurrency  string
	QuoteCurrency string
	Rate          decimal.Decimal
}

type CostCenter struct {
	ID    string
	Code  string
	Label string
}

// FamilyAllowance - per-child non-taxable allowance configuration.
type FamilyAllowance struct {
	AmountPerChild decimal.Decimal
	MaxChildren    int
}
