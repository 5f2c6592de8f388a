package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mosala-erp/payroll-backend-go/internal/domain/ledger"
	"github.com/mosala-erp/payroll-backend-go/internal/pkg/database"
)

type ledgerRepository struct {
	db *database.DB
}

func NewLedgerRepository(db *database.DB) ledger.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) ResolveAccount(ctx context.Context, number string) (ledger.Account, error) {
	q := GetQuerier(ctx, r.db)

	var a ledger.Account
	err := q.QueryRow(ctx, `SELECT id, number, label FROM ledger_accounts WHERE number = $1`, number).Scan(
		&a.ID, &a.Number, &a.Label,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ledger.Account{}, ledger.ErrAccountNotFound
		}
		return ledger.Account{}, fmt.Errorf("failed to resolve ledger account: %w", err)
	}

	return a, nil
}

func (r *ledgerRepository) ResolveAccounts(ctx context.Context, numbers []string) (map[string]ledger.Account, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id, number, label FROM ledger_accounts WHERE number = ANY($1)`, numbers)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ledger accounts: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]ledger.Account)
	for rows.Next() {
		var a ledger.Account
		if err := rows.Scan(&a.ID, &a.Number, &a.Label); err != nil {
			return nil, fmt.Errorf("failed to scan ledger account: %w", err)
		}
		accounts[a.Number] = a
	}

	return accounts, nil
}

// AppendEntry persists a journal entry with its lines. The balance check is
// repeated here so no unbalanced entry can reach the table regardless of
// which caller built it.
func (r *ledgerRepository) AppendEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	if !e.Balanced() {
		return ledger.Entry{}, ledger.ErrUnbalancedEntry
	}

	q := GetQuerier(ctx, r.db)

	entryQuery := `
		INSERT INTO ledger_entries (id, number, entry_date, source_type, source_id, description, reverses_entry_id)
		VALUES ($1, 'JRN-' || lpad(nextval('ledger_entry_ref_seq')::text, 6, '0'), $2, $3, $4, $5, $6)
		RETURNING number, created_at
	`

	created := e
	created.ID = uuid.NewString()
	err := q.QueryRow(ctx, entryQuery,
		created.ID, e.Date, e.SourceType, e.SourceID, e.Description, e.ReversesEntryID,
	).Scan(&created.Number, &created.CreatedAt)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("failed to create ledger entry: %w", err)
	}

	lineQuery := `
		INSERT INTO ledger_entry_lines (id, entry_id, account_id, direction, amount, kind, cost_center_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for i := range created.Lines {
		l := &created.Lines[i]
		l.ID = uuid.NewString()
		l.EntryID = created.ID
		if _, err := q.Exec(ctx, lineQuery,
			l.ID, created.ID, l.AccountID, l.Direction, l.Amount, l.Kind, l.CostCenterID,
		); err != nil {
			return ledger.Entry{}, fmt.Errorf("failed to create ledger entry line: %w", err)
		}
	}

	return created, nil
}

func (r *ledgerRepository) ListBySource(ctx context.Context, sourceType ledger.SourceType, sourceID string) ([]ledger.Entry, error) {
	query := `
		SELECT id, number, entry_date, source_type, source_id, description, reverses_entry_id, created_at
		FROM ledger_entries
		WHERE source_type = $1 AND source_id = $2
		ORDER BY created_at
	`
	return r.queryEntries(ctx, query, sourceType, sourceID)
}

// UnreversedBySource returns source entries no reversal points at yet.
func (r *ledgerRepository) UnreversedBySource(ctx context.Context, sourceType ledger.SourceType, sourceID string) ([]ledger.Entry, error) {
	query := `
		SELECT e.id, e.number, e.entry_date, e.source_type, e.source_id, e.description, e.reverses_entry_id, e.created_at
		FROM ledger_entries e
		WHERE e.source_type = $1 AND e.source_id = $2
		  AND NOT EXISTS (
			SELECT 1 FROM ledger_entries rev WHERE rev.reverses_entry_id = e.id
		  )
		ORDER BY e.created_at
	`
	return r.queryEntries(ctx, query, sourceType, sourceID)
}

func (r *ledgerRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]ledger.Entry, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	var ids []string
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(
			&e.ID, &e.Number, &e.Date, &e.SourceType, &e.SourceID,
			&e.Description, &e.ReversesEntryID, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
		ids = append(ids, e.ID)
	}
	rows.Close()

	if len(entries) == 0 {
		return entries, nil
	}

	lineQuery := `
		SELECT l.id, l.entry_id, l.account_id, a.number, l.direction, l.amount, l.kind, l.cost_center_id
		FROM ledger_entry_lines l
		JOIN ledger_accounts a ON l.account_id = a.id
		WHERE l.entry_id = ANY($1)
		ORDER BY l.entry_id, l.id
	`

	lineRows, err := q.Query(ctx, lineQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entry lines: %w", err)
	}
	defer lineRows.Close()

	byEntry := make(map[string][]ledger.EntryLine)
	for lineRows.Next() {
		var l ledger.EntryLine
		if err := lineRows.Scan(
			&l.ID, &l.EntryID, &l.AccountID, &l.AccountNumber,
			&l.Direction, &l.Amount, &l.Kind, &l.CostCenterID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry line: %w", err)
		}
		byEntry[l.EntryID] = append(byEntry[l.EntryID], l)
	}

	for i := range entries {
		entries[i].Lines = byEntry[entries[i].ID]
	}

	return entries, nil
}
