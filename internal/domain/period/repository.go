package period

import (
	"context"
	"time"
)

// PeriodRepository defines data access for payroll periods. UpdateStatusCAS is
// the only way a status is written: it matches the expected status in the
// WHERE clause so a stale caller gets zero rows instead of a silent overwrite.
type PeriodRepository interface {
	Create(ctx context.Context, p Period) (Period, error)
	GetByID(ctx context.Context, id string) (Period, error)
	// GetByIDForUpdate takes the period's row lock for the rest of the
	// transaction, serializing operations that must not run twice.
	GetByIDForUpdate(ctx context.Context, id string) (Period, error)
	List(ctx context.Context) ([]Period, error)
	UpdateStatusCAS(ctx context.Context, id string, from, to Status, lockedAt, postedAt *time.Time) (bool, error)
}
