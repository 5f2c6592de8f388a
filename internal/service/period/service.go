package period

import (
	"context"
	"fmt"
	"time"

	"github.com/mosala-erp/payroll-backend-go/internal/domain/payslip"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/period"
	"github.com/mosala-erp/payroll-backend-go/internal/pkg/database"
	"github.com/mosala-erp/payroll-backend-go/internal/pkg/metrics"
	"github.com/mosala-erp/payroll-backend-go/internal/repository/postgresql"
	"github.com/mosala-erp/payroll-backend-go/internal/service/posting"
)

type PeriodServiceImpl struct {
	db          *database.DB
	periodRepo  period.PeriodRepository
	payslipRepo payslip.PayslipRepository
	engine      *posting.Engine
}

func NewPeriodService(
	db *database.DB,
	periodRepo period.PeriodRepository,
	payslipRepo payslip.PayslipRepository,
	engine *posting.Engine,
) period.PeriodService {
	return &PeriodServiceImpl{
		db:          db,
		periodRepo:  periodRepo,
		payslipRepo: payslipRepo,
		engine:      engine,
	}
}

func toResponse(p period.Period) period.PeriodResponse {
	return period.PeriodResponse{
		ID:        p.ID,
		Ref:       p.Ref,
		Month:     p.Month,
		Year:      p.Year,
		Status:    p.Status,
		LockedAt:  p.LockedAt,
		PostedAt:  p.PostedAt,
		CreatedAt: p.CreatedAt,
	}
}

func (s *PeriodServiceImpl) Create(ctx context.Context, req period.CreatePeriodRequest) (period.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return period.PeriodResponse{}, err
	}
	p, err := s.periodRepo.Create(ctx, period.Period{
		Ref:    fmt.Sprintf("PAY-%04d-%02d", req.Year, req.Month),
		Month:  req.Month,
		Year:   req.Year,
		Status: period.StatusOpen,
	})
	if err != nil {
		return period.PeriodResponse{}, err
	}
	return toResponse(p), nil
}

func (s *PeriodServiceImpl) List(ctx context.Context) ([]period.PeriodResponse, error) {
	periods, err := s.periodRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]period.PeriodResponse, 0, len(periods))
	for _, p := range periods {
		resp = append(resp, toResponse(p))
	}
	return resp, nil
}

func (s *PeriodServiceImpl) Get(ctx context.Context, id string) (period.PeriodResponse, error) {
	p, err := s.periodRepo.GetByID(ctx, id)
	if err != nil {
		return period.PeriodResponse{}, err
	}
	return toResponse(p), nil
}

// Lock freezes an open period: payslips become read-only and the period
// moves to LOCKED. A period with no payslips, or one whose net total is
// not positive, cannot be locked.
func (s *PeriodServiceImpl) Lock(ctx context.Context, id string) (period.LockResult, error) {
	p, err := s.periodRepo.GetByID(ctx, id)
	if err != nil {
		return period.LockResult{}, err
	}
	if !period.CanTransition(p.Status, period.StatusLocked) {
		return period.LockResult{}, period.ErrInvalidTransition
	}

	// The payslip checks run inside the transaction, after the CAS has taken
	// the period's row lock, so they see the state that actually gets frozen.
	now := time.Now().UTC()
	var locked int
	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		ok, err := s.periodRepo.UpdateStatusCAS(txCtx, id, p.Status, period.StatusLocked, &now, nil)
		if err != nil {
			return err
		}
		if !ok {
			return period.ErrConflict
		}
		count, err := s.payslipRepo.CountByPeriod(txCtx, id)
		if err != nil {
			return err
		}
		if count == 0 {
			return period.ErrEmptyPeriod
		}
		netTotal, err := s.payslipRepo.NetTotal(txCtx, id)
		if err != nil {
			return err
		}
		if !netTotal.IsPositive() {
			return period.ErrNonPositiveNet
		}
		locked, err = s.payslipRepo.SetLockedForPeriod(txCtx, id, true)
		return err
	})
	if err != nil {
		return period.LockResult{}, err
	}

	metrics.PeriodTransitions.WithLabelValues(string(period.StatusLocked)).Inc()
	return period.LockResult{LockedAt: now, PayslipsLocked: locked}, nil
}

// Unlock reopens a locked period for corrections.
func (s *PeriodServiceImpl) Unlock(ctx context.Context, id string) (period.UnlockResult, error) {
	p, err := s.periodRepo.GetByID(ctx, id)
	if err != nil {
		return period.UnlockResult{}, err
	}
	if !period.CanTransition(p.Status, period.StatusOpen) {
		return period.UnlockResult{}, period.ErrInvalidTransition
	}

	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		ok, err := s.periodRepo.UpdateStatusCAS(txCtx, id, p.Status, period.StatusOpen, nil, nil)
		if err != nil {
			return err
		}
		if !ok {
			return period.ErrConflict
		}
		_, err = s.payslipRepo.SetLockedForPeriod(txCtx, id, false)
		return err
	})
	if err != nil {
		return period.UnlockResult{}, err
	}

	metrics.PeriodTransitions.WithLabelValues(string(period.StatusOpen)).Inc()
	return period.UnlockResult{Unlocked: true}, nil
}

func (s *PeriodServiceImpl) Post(ctx context.Context, id string) (period.PostResult, error) {
	p, err := s.periodRepo.GetByID(ctx, id)
	if err != nil {
		return period.PostResult{}, err
	}
	return s.engine.PostPeriod(ctx, p)
}

func (s *PeriodServiceImpl) Reverse(ctx context.Context, id string) (period.ReverseResult, error) {
	p, err := s.periodRepo.GetByID(ctx, id)
	if err != nil {
		return period.ReverseResult{}, err
	}
	return s.engine.ReversePeriod(ctx, p)
}

func (s *PeriodServiceImpl) Settle(ctx context.Context, id string, req period.SettleRequest) (period.SettleResult, error) {
	p, err := s.periodRepo.GetByID(ctx, id)
	if err != nil {
		return period.SettleResult{}, err
	}
	return s.engine.SettleNetPay(ctx, p, req)
}

func (s *PeriodServiceImpl) Audit(ctx context.Context, id string) (period.AuditResult, error) {
	p, err := s.periodRepo.GetByID(ctx, id)
	if err != nil {
		return period.AuditResult{}, err
	}
	return s.engine.AuditPeriod(ctx, p)
}
