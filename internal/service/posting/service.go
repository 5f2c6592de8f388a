package posting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mosala-erp/payroll-backend-go/internal/domain/ledger"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/payslip"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/period"
	"github.com/mosala-erp/payroll-backend-go/internal/pkg/database"
	"github.com/mosala-erp/payroll-backend-go/internal/pkg/metrics"
	"github.com/mosala-erp/payroll-backend-go/internal/pkg/validator"
	"github.com/mosala-erp/payroll-backend-go/internal/repository/postgresql"
)

// Engine turns locked periods into balanced ledger entries, and back.
type Engine struct {
	db          *database.DB
	logger      *slog.Logger
	defaultBank string
	periodRepo  period.PeriodRepository
	payslipRepo payslip.PayslipRepository
	ledgerRepo  ledger.LedgerRepository
}

func NewEngine(
	db *database.DB,
	logger *slog.Logger,
	defaultBank string,
	periodRepo period.PeriodRepository,
	payslipRepo payslip.PayslipRepository,
	ledgerRepo ledger.LedgerRepository,
) *Engine {
	if defaultBank == "" {
		defaultBank = DefaultBankAccount.Number
	}
	return &Engine{
		db:          db,
		logger:      logger,
		defaultBank: defaultBank,
		periodRepo:  periodRepo,
		payslipRepo: payslipRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// resolveAccounts fills in account IDs for entry lines that only carry a
// chart number.
func (e *Engine) resolveAccounts(ctx context.Context, entry *ledger.Entry) error {
	seen := make(map[string]bool)
	var numbers []string
	for _, l := range entry.Lines {
		if !seen[l.AccountNumber] {
			seen[l.AccountNumber] = true
			numbers = append(numbers, l.AccountNumber)
		}
	}
	accounts, err := e.ledgerRepo.ResolveAccounts(ctx, numbers)
	if err != nil {
		return err
	}
	for i := range entry.Lines {
		acct, ok := accounts[entry.Lines[i].AccountNumber]
		if !ok {
			return fmt.Errorf("account %s: %w", entry.Lines[i].AccountNumber, ledger.ErrAccountNotFound)
		}
		entry.Lines[i].AccountID = acct.ID
	}
	return nil
}

// PostPeriod aggregates the period's payslips into a single balanced entry,
// appends it and moves the period to POSTED. The append and the status
// change commit together or not at all.
func (e *Engine) PostPeriod(ctx context.Context, p period.Period) (period.PostResult, error) {
	if !period.CanTransition(p.Status, period.StatusPosted) {
		return period.PostResult{}, period.ErrInvalidTransition
	}

	slips, err := e.payslipRepo.ListByPeriod(ctx, p.ID)
	if err != nil {
		return period.PostResult{}, err
	}
	if len(slips) == 0 {
		return period.PostResult{}, period.ErrEmptyPeriod
	}

	entry, err := BuildPeriodEntry(p, slips, time.Now().UTC())
	if err != nil {
		if errors.Is(err, ledger.ErrUnbalancedEntry) {
			debit, credit := entry.DebitCredit()
			e.logger.Error("refusing to post unbalanced payroll entry",
				slog.String("period_id", p.ID),
				slog.String("debit_total", debit.String()),
				slog.String("credit_total", credit.String()),
			)
			metrics.UnbalancedEntries.Inc()
		}
		return period.PostResult{}, err
	}
	if err := e.resolveAccounts(ctx, &entry); err != nil {
		return period.PostResult{}, err
	}

	var created ledger.Entry
	err = postgresql.WithTransaction(ctx, e.db, func(txCtx context.Context) error {
		now := time.Now().UTC()
		ok, err := e.periodRepo.UpdateStatusCAS(txCtx, p.ID, p.Status, period.StatusPosted, p.LockedAt, &now)
		if err != nil {
			return err
		}
		if !ok {
			return period.ErrConflict
		}
		created, err = e.ledgerRepo.AppendEntry(txCtx, entry)
		return err
	})
	if err != nil {
		return period.PostResult{}, err
	}

	metrics.LedgerEntriesPosted.WithLabelValues(string(ledger.SourcePayroll)).Inc()
	metrics.PeriodTransitions.WithLabelValues(string(period.StatusPosted)).Inc()

	debit, credit := created.DebitCredit()
	return period.PostResult{
		LedgerEntryID: created.ID,
		Number:        created.Number,
		DebitTotal:    debit,
		CreditTotal:   credit,
	}, nil
}

// ReversePeriod appends flipped mirrors of every unreversed payroll entry
// of the period and moves the period back to LOCKED, so it can be unlocked,
// corrected and posted again.
func (e *Engine) ReversePeriod(ctx context.Context, p period.Period) (period.ReverseResult, error) {
	if !period.CanTransition(p.Status, period.StatusLocked) {
		return period.ReverseResult{}, period.ErrInvalidTransition
	}

	sources, err := e.ledgerRepo.UnreversedBySource(ctx, ledger.SourcePayroll, p.ID)
	if err != nil {
		return period.ReverseResult{}, err
	}
	if len(sources) == 0 {
		return period.ReverseResult{}, fmt.Errorf("period %s has no unreversed payroll entry: %w", p.ID, ledger.ErrEntryNotFound)
	}

	result := period.ReverseResult{}
	err = postgresql.WithTransaction(ctx, e.db, func(txCtx context.Context) error {
		ok, err := e.periodRepo.UpdateStatusCAS(txCtx, p.ID, p.Status, period.StatusLocked, p.LockedAt, nil)
		if err != nil {
			return err
		}
		if !ok {
			return period.ErrConflict
		}
		now := time.Now().UTC()
		for _, src := range sources {
			reversal := BuildReversalEntry(p, src, now)
			created, err := e.ledgerRepo.AppendEntry(txCtx, reversal)
			if err != nil {
				return err
			}
			if result.LedgerEntryID == "" {
				result.LedgerEntryID = created.ID
			}
			debit, credit := created.DebitCredit()
			result.ReversedLineCount += len(created.Lines)
			result.DebitTotal = result.DebitTotal.Add(debit)
			result.CreditTotal = result.CreditTotal.Add(credit)
		}
		return nil
	})
	if err != nil {
		return period.ReverseResult{}, err
	}

	metrics.LedgerEntriesPosted.WithLabelValues(string(ledger.SourcePayrollReversal)).Inc()
	metrics.PeriodTransitions.WithLabelValues(string(period.StatusLocked)).Inc()
	return result, nil
}

// SettleNetPay clears the posted net pay liability against a money account.
// With DryRun set it only reports the totals that would move.
func (e *Engine) SettleNetPay(ctx context.Context, p period.Period, req period.SettleRequest) (period.SettleResult, error) {
	if p.Status != period.StatusPosted {
		return period.SettleResult{}, period.ErrConflict
	}

	bankNumber := e.defaultBank
	if req.AccountNumber != "" {
		if !validator.IsValidAccountNumber(req.AccountNumber) {
			return period.SettleResult{}, validator.ValidationErrors{
				{Field: "account_number", Message: "must be a 6 digit account number"},
			}
		}
		bankNumber = req.AccountNumber
	}
	acct, err := e.ledgerRepo.ResolveAccount(ctx, bankNumber)
	if err != nil {
		return period.SettleResult{}, err
	}
	bank := accountDef{Number: acct.Number, Label: acct.Label}

	// The duplicate check, the net total and the append all run under the
	// period's row lock: two concurrent settles serialize and the second
	// one sees the first one's entry.
	var result period.SettleResult
	err = postgresql.WithTransaction(ctx, e.db, func(txCtx context.Context) error {
		cur, err := e.periodRepo.GetByIDForUpdate(txCtx, p.ID)
		if err != nil {
			return err
		}
		if cur.Status != period.StatusPosted {
			return period.ErrConflict
		}

		netTotal, err := e.payslipRepo.NetTotal(txCtx, p.ID)
		if err != nil {
			return err
		}
		if !netTotal.IsPositive() {
			return period.ErrNonPositiveNet
		}

		existing, err := e.ledgerRepo.ListBySource(txCtx, ledger.SourcePayrollSettlement, p.ID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return period.ErrConflict
		}

		result = period.SettleResult{DebitTotal: netTotal, CreditTotal: netTotal}
		if req.DryRun {
			return nil
		}

		entry := BuildSettlementEntry(cur, netTotal, bank, time.Now().UTC())
		if err := e.resolveAccounts(txCtx, &entry); err != nil {
			return err
		}
		if _, err := e.ledgerRepo.AppendEntry(txCtx, entry); err != nil {
			return err
		}
		result.Persisted = true
		return nil
	})
	if err != nil {
		return period.SettleResult{}, err
	}

	if result.Persisted {
		metrics.LedgerEntriesPosted.WithLabelValues(string(ledger.SourcePayrollSettlement)).Inc()
	}
	return result, nil
}

// AuditPeriod recomputes the expected ledger footprint from the payslip
// lines and compares it with the live unreversed entries.
func (e *Engine) AuditPeriod(ctx context.Context, p period.Period) (period.AuditResult, error) {
	if p.Status != period.StatusPosted {
		return period.AuditResult{}, period.ErrConflict
	}

	slips, err := e.payslipRepo.ListByPeriod(ctx, p.ID)
	if err != nil {
		return period.AuditResult{}, err
	}
	entries, err := e.ledgerRepo.UnreversedBySource(ctx, ledger.SourcePayroll, p.ID)
	if err != nil {
		return period.AuditResult{}, err
	}

	result, err := AuditPeriodEntries(slips, entries)
	if err != nil {
		return period.AuditResult{}, err
	}
	if n := len(result.Mismatches); n > 0 {
		metrics.AuditMismatches.Add(float64(n))
		e.logger.Warn("payroll audit found ledger mismatches",
			slog.String("period_id", p.ID),
			slog.Int("mismatch_count", n),
		)
	}
	return result, nil
}
