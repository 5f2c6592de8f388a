package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mosala-erp/payroll-backend-go/internal/domain/period"
	"github.com/mosala-erp/payroll-backend-go/internal/pkg/database"
)

type periodRepository struct {
	db *database.DB
}

func NewPeriodRepository(db *database.DB) period.PeriodRepository {
	return &periodRepository{db: db}
}

func (r *periodRepository) Create(ctx context.Context, p period.Period) (period.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_periods (ref, month, year, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, ref, month, year, status, locked_at, posted_at, created_at, updated_at
	`

	var created period.Period
	err := q.QueryRow(ctx, query, p.Ref, p.Month, p.Year, p.Status).Scan(
		&created.ID, &created.Ref, &created.Month, &created.Year, &created.Status,
		&created.LockedAt, &created.PostedAt, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "uk_payroll_period_month_year") {
			return period.Period{}, period.ErrPeriodExists
		}
		return period.Period{}, fmt.Errorf("failed to create payroll period: %w", err)
	}

	return created, nil
}

func (r *periodRepository) GetByID(ctx context.Context, id string) (period.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, ref, month, year, status, locked_at, posted_at, created_at, updated_at
		FROM payroll_periods
		WHERE id = $1
	`

	var p period.Period
	err := q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Ref, &p.Month, &p.Year, &p.Status,
		&p.LockedAt, &p.PostedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return period.Period{}, period.ErrPeriodNotFound
		}
		return period.Period{}, fmt.Errorf("failed to get payroll period: %w", err)
	}

	return p, nil
}

func (r *periodRepository) GetByIDForUpdate(ctx context.Context, id string) (period.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, ref, month, year, status, locked_at, posted_at, created_at, updated_at
		FROM payroll_periods
		WHERE id = $1
		FOR UPDATE
	`

	var p period.Period
	err := q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Ref, &p.Month, &p.Year, &p.Status,
		&p.LockedAt, &p.PostedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return period.Period{}, period.ErrPeriodNotFound
		}
		return period.Period{}, fmt.Errorf("failed to get payroll period for update: %w", err)
	}

	return p, nil
}

func (r *periodRepository) List(ctx context.Context) ([]period.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, ref, month, year, status, locked_at, posted_at, created_at, updated_at
		FROM payroll_periods
		ORDER BY year DESC, month DESC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	defer rows.Close()

	var periods []period.Period
	for rows.Next() {
		var p period.Period
		if err := rows.Scan(
			&p.ID, &p.Ref, &p.Month, &p.Year, &p.Status,
			&p.LockedAt, &p.PostedAt, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll period: %w", err)
		}
		periods = append(periods, p)
	}

	return periods, nil
}

// UpdateStatusCAS moves the period status only if it still has the expected
// one. Zero affected rows means a concurrent caller got there first.
func (r *periodRepository) UpdateStatusCAS(ctx context.Context, id string, from, to period.Status, lockedAt, postedAt *time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods
		SET status = $3, locked_at = $4, posted_at = $5, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := q.Exec(ctx, query, id, from, to, lockedAt, postedAt)
	if err != nil {
		return false, fmt.Errorf("failed to update payroll period status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
