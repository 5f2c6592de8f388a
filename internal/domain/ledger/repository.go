package ledger

import "context"

// LedgerRepository is the collaborator-facing surface of the general ledger:
// resolve accounts by number and append balanced entries. Account creation
// and generic querying belong to the chart-of-accounts subsystem.
type LedgerRepository interface {
	ResolveAccount(ctx context.Context, number string) (Account, error)
	ResolveAccounts(ctx context.Context, numbers []string) (map[string]Account, error)
	AppendEntry(ctx context.Context, e Entry) (Entry, error)
	ListBySource(ctx context.Context, sourceType SourceType, sourceID string) ([]Entry, error)
	// UnreversedBySource returns source entries that no reversal entry points at.
	UnreversedBySource(ctx context.Context, sourceType SourceType, sourceID string) ([]Entry, error)
}
