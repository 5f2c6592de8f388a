package period

import "context"

// PeriodService drives the period lifecycle and the operations gated by it.
type PeriodService interface {
	Create(ctx context.Context, req CreatePeriodRequest) (PeriodResponse, error)
	List(ctx context.Context) ([]PeriodResponse, error)
	Get(ctx context.Context, id string) (PeriodResponse, error)
	Lock(ctx context.Context, id string) (LockResult, error)
	Unlock(ctx context.Context, id string) (UnlockResult, error)
	Post(ctx context.Context, id string) (PostResult, error)
	Reverse(ctx context.Context, id string) (ReverseResult, error)
	Settle(ctx context.Context, id string, req SettleRequest) (SettleResult, error)
	Audit(ctx context.Context, id string) (AuditResult, error)
}
