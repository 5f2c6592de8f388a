package ledger

import "errors"

var (
	// ErrUnbalancedEntry is an engine/config defect, never user error. It is
	// logged with full totals and the surrounding transaction is rolled back.
	ErrUnbalancedEntry = errors.New("ledger entry debit and credit totals differ")

	ErrAccountNotFound = errors.New("ledger account not found")
	ErrEntryNotFound   = errors.New("ledger entry not found")
)
