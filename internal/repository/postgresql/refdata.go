package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mosala-erp/payroll-backend-go/internal/domain/refdata"
	"github.com/mosala-erp/payroll-backend-go/internal/pkg/database"
)

type refdataRepository struct {
	db *database.DB
}

func NewRefdataRepository(db *database.DB) refdata.RefdataRepository {
	return &refdataRepository{db: db}
}

func (r *refdataRepository) GetActiveSchemes(ctx context.Context) (map[string]refdata.ContributionScheme, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, code, label, employee_rate, employer_rate, monthly_cap, active
		FROM contribution_schemes
		WHERE active = true
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list contribution schemes: %w", err)
	}
	defer rows.Close()

	schemes := make(map[string]refdata.ContributionScheme)
	for rows.Next() {
		var s refdata.ContributionScheme
		if err := rows.Scan(&s.ID, &s.Code, &s.Label, &s.EmployeeRate, &s.EmployerRate, &s.MonthlyCap, &s.Active); err != nil {
			return nil, fmt.Errorf("failed to scan contribution scheme: %w", err)
		}
		schemes[s.Code] = s
	}

	return schemes, nil
}

// GetTaxRule returns the newest active rule valid at the given date.
// Brackets are stored as a JSONB array on the rule row.
func (r *refdataRepository) GetTaxRule(ctx context.Context, at time.Time) (refdata.TaxRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, code, brackets, professional_expense_rate, cap_rate, minimum_monthly_tax, valid_from, active
		FROM tax_rules
		WHERE active = true AND valid_from <= $1
		ORDER BY valid_from DESC
		LIMIT 1
	`

	var rule refdata.TaxRule
	var bracketsJSON []byte
	err := q.QueryRow(ctx, query, at).Scan(
		&rule.ID, &rule.Code, &bracketsJSON, &rule.ProfessionalExpenseRate,
		&rule.CapRate, &rule.MinimumMonthlyTax, &rule.ValidFrom, &rule.Active,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return refdata.TaxRule{}, refdata.MissingConfig(fmt.Sprintf("tax rule valid at %s", at.Format("2006-01-02")))
		}
		return refdata.TaxRule{}, fmt.Errorf("failed to get tax rule: %w", err)
	}

	if err := json.Unmarshal(bracketsJSON, &rule.Brackets); err != nil {
		return refdata.TaxRule{}, fmt.Errorf("failed to unmarshal tax brackets: %w", err)
	}

	return rule, nil
}

func (r *refdataRepository) GetFxRate(ctx context.Context, at time.Time, base, quote string) (refdata.FxRate, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, rate_date, base_currency, quote_currency, rate
		FROM fx_rates
		WHERE base_currency = $1 AND quote_currency = $2 AND rate_date <= $3
		ORDER BY rate_date DESC
		LIMIT 1
	`

	var fx refdata.FxRate
	err := q.QueryRow(ctx, query, base, quote, at).Scan(
		&fx.ID, &fx.Date, &fx.BaseCurrency, &fx.QuoteCurrency, &fx.Rate,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return refdata.FxRate{}, refdata.MissingConfig(fmt.Sprintf("fx rate %s/%s at %s", base, quote, at.Format("2006-01-02")))
		}
		return refdata.FxRate{}, fmt.Errorf("failed to get fx rate: %w", err)
	}

	return fx, nil
}

func (r *refdataRepository) ListCostCenters(ctx context.Context) ([]refdata.CostCenter, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id, code, label FROM cost_centers ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cost centers: %w", err)
	}
	defer rows.Close()

	var centers []refdata.CostCenter
	for rows.Next() {
		var c refdata.CostCenter
		if err := rows.Scan(&c.ID, &c.Code, &c.Label); err != nil {
			return nil, fmt.Errorf("failed to scan cost center: %w", err)
		}
		centers = append(centers, c)
	}

	return centers, nil
}

func (r *refdataRepository) GetFamilyAllowance(ctx context.Context) (refdata.FamilyAllowance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT amount_per_child, max_children
		FROM family_allowance_settings
		ORDER BY created_at DESC
		LIMIT 1
	`

	var fa refdata.FamilyAllowance
	err := q.QueryRow(ctx, query).Scan(&fa.AmountPerChild, &fa.MaxChildren)
	if err != nil {
		if err == pgx.ErrNoRows {
			// No configuration means no family allowance lines.
			return refdata.FamilyAllowance{}, nil
		}
		return refdata.FamilyAllowance{}, fmt.Errorf("failed to get family allowance settings: %w", err)
	}

	return fa, nil
}
