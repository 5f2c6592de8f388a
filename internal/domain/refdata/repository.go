package refdata

import (
	"context"
	"time"
)

// RefdataRepository exposes read-only lookups over the configuration
// providers. Maintenance of this data belongs to other subsystems.
type RefdataRepository interface {
	GetActiveSchemes(ctx context.Context) (map[string]ContributionScheme, error)
	GetTaxRule(ctx context.Context, at time.Time) (TaxRule, error)
	// GetFxRate returns the latest rate with date <= at for the pair.
	GetFxRate(ctx context.Context, at time.Time, base, quote string) (FxRate, error)
	ListCostCenters(ctx context.Context) ([]CostCenter, error)
	GetFamilyAllowance(ctx context.Context) (FamilyAllowance, error)
}
