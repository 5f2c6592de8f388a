package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mosala-erp/payroll-backend-go/internal/domain/payslip"
	"github.com/mosala-erp/payroll-backend-go/internal/pkg/database"
)

type payslipRepository struct {
	db *database.DB
}

func NewPayslipRepository(db *database.DB) payslip.PayslipRepository {
	return &payslipRepository{db: db}
}

func (r *payslipRepository) Create(ctx context.Context, p payslip.Payslip) (payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payslips (id, ref, period_id, employee_id, gross, net, currency, locked)
		VALUES ($1, 'PSL-' || lpad(nextval('payslip_ref_seq')::text, 6, '0'), $2, $3, $4, $5, $6, false)
		RETURNING ref, created_at, updated_at
	`

	created := p
	created.ID = uuid.NewString()
	err := q.QueryRow(ctx, query, created.ID, p.PeriodID, p.EmployeeID, p.Gross, p.Net, p.Currency).Scan(
		&created.Ref, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "uk_payslip_period_employee") {
			return payslip.Payslip{}, fmt.Errorf("payslip already exists for employee %s in period %s", p.EmployeeID, p.PeriodID)
		}
		return payslip.Payslip{}, fmt.Errorf("failed to create payslip: %w", err)
	}

	if err := r.insertLines(ctx, q, created.ID, p.Lines); err != nil {
		return payslip.Payslip{}, err
	}
	for i := range created.Lines {
		created.Lines[i].PayslipID = created.ID
	}

	return created, nil
}

func (r *payslipRepository) insertLines(ctx context.Context, q database.Querier, payslipID string, lines []payslip.Line) error {
	query := `
		INSERT INTO payslip_lines (id, payslip_id, code, label, amount, base_amount, position, cost_center_id, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, l := range lines {
		var metaJSON []byte
		if l.Meta != nil {
			var err error
			metaJSON, err = json.Marshal(l.Meta)
			if err != nil {
				return fmt.Errorf("failed to marshal payslip line meta: %w", err)
			}
		}
		_, err := q.Exec(ctx, query, uuid.NewString(), payslipID, l.Code, l.Label, l.Amount, l.BaseAmount, l.Position, l.CostCenterID, metaJSON)
		if err != nil {
			return fmt.Errorf("failed to insert payslip line: %w", err)
		}
	}

	return nil
}

func (r *payslipRepository) GetByID(ctx context.Context, id string) (payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT p.id, p.ref, p.period_id, p.employee_id, p.gross, p.net, p.currency, p.locked,
			   p.created_at, p.updated_at,
			   e.first_name || ' ' || e.last_name as employee_name
		FROM payslips p
		JOIN employees e ON p.employee_id = e.id
		WHERE p.id = $1
	`

	var p payslip.Payslip
	err := q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Ref, &p.PeriodID, &p.EmployeeID, &p.Gross, &p.Net, &p.Currency, &p.Locked,
		&p.CreatedAt, &p.UpdatedAt, &p.EmployeeName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payslip.Payslip{}, payslip.ErrPayslipNotFound
		}
		return payslip.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}

	lines, err := r.linesFor(ctx, q, []string{p.ID})
	if err != nil {
		return payslip.Payslip{}, err
	}
	p.Lines = lines[p.ID]

	return p, nil
}

func (r *payslipRepository) ListByPeriod(ctx context.Context, periodID string) ([]payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT p.id, p.ref, p.period_id, p.employee_id, p.gross, p.net, p.currency, p.locked,
			   p.created_at, p.updated_at,
			   e.first_name || ' ' || e.last_name as employee_name
		FROM payslips p
		JOIN employees e ON p.employee_id = e.id
		WHERE p.period_id = $1
		ORDER BY p.employee_id
	`

	rows, err := q.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var slips []payslip.Payslip
	var ids []string
	for rows.Next() {
		var p payslip.Payslip
		if err := rows.Scan(
			&p.ID, &p.Ref, &p.PeriodID, &p.EmployeeID, &p.Gross, &p.Net, &p.Currency, &p.Locked,
			&p.CreatedAt, &p.UpdatedAt, &p.EmployeeName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		slips = append(slips, p)
		ids = append(ids, p.ID)
	}
	rows.Close()

	if len(slips) == 0 {
		return slips, nil
	}

	lines, err := r.linesFor(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range slips {
		slips[i].Lines = lines[slips[i].ID]
	}

	return slips, nil
}

func (r *payslipRepository) linesFor(ctx context.Context, q database.Querier, payslipIDs []string) (map[string][]payslip.Line, error) {
	query := `
		SELECT id, payslip_id, code, label, amount, base_amount, position, cost_center_id, meta
		FROM payslip_lines
		WHERE payslip_id = ANY($1)
		ORDER BY payslip_id, position
	`

	rows, err := q.Query(ctx, query, payslipIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslip lines: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]payslip.Line)
	for rows.Next() {
		var l payslip.Line
		var metaBytes []byte
		if err := rows.Scan(
			&l.ID, &l.PayslipID, &l.Code, &l.Label, &l.Amount, &l.BaseAmount,
			&l.Position, &l.CostCenterID, &metaBytes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payslip line: %w", err)
		}
		if len(metaBytes) > 0 {
			if err := json.Unmarshal(metaBytes, &l.Meta); err != nil {
				return nil, fmt.Errorf("failed to unmarshal payslip line meta: %w", err)
			}
		}
		result[l.PayslipID] = append(result[l.PayslipID], l)
	}

	return result, nil
}

func (r *payslipRepository) ExistingEmployeeIDs(ctx context.Context, periodID string) (map[string]bool, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT employee_id FROM payslips WHERE period_id = $1`, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslip employee ids: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan payslip employee id: %w", err)
		}
		existing[id] = true
	}

	return existing, nil
}

// ReplaceLines swaps a payslip's lines and totals in place. Refuses locked
// payslips at the database level as a second line of defense.
func (r *payslipRepository) ReplaceLines(ctx context.Context, payslipID string, gross, net decimal.Decimal, lines []payslip.Line) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payslips
		SET gross = $2, net = $3, updated_at = NOW()
		WHERE id = $1 AND locked = false
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, payslipID, gross, net).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payslip.ErrPayslipLocked
		}
		return fmt.Errorf("failed to update payslip totals: %w", err)
	}

	if _, err := q.Exec(ctx, `DELETE FROM payslip_lines WHERE payslip_id = $1`, payslipID); err != nil {
		return fmt.Errorf("failed to delete payslip lines: %w", err)
	}

	return r.insertLines(ctx, q, payslipID, lines)
}

func (r *payslipRepository) SetLockedForPeriod(ctx context.Context, periodID string, locked bool) (int, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE payslips SET locked = $2, updated_at = NOW() WHERE period_id = $1`, periodID, locked)
	if err != nil {
		return 0, fmt.Errorf("failed to set payslip lock flags: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func (r *payslipRepository) CountByPeriod(ctx context.Context, periodID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payslips WHERE period_id = $1`, periodID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count payslips: %w", err)
	}

	return count, nil
}

func (r *payslipRepository) NetTotal(ctx context.Context, periodID string) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	var total decimal.Decimal
	err := q.QueryRow(ctx, `SELECT COALESCE(SUM(net), 0) FROM payslips WHERE period_id = $1`, periodID).Scan(&total)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to sum payslip nets: %w", err)
	}

	return total, nil
}
