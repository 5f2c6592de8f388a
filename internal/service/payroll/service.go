package payroll

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mosala-erp/payroll-backend-go/internal/domain/employee"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/payslip"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/period"
	"github.com/mosala-erp/payroll-backend-go/internal/domain/refdata"
	"github.com/mosala-erp/payroll-backend-go/internal/pkg/database"
	"github.com/mosala-erp/payroll-backend-go/internal/pkg/metrics"
	"github.com/mosala-erp/payroll-backend-go/internal/pkg/validator"
	"github.com/mosala-erp/payroll-backend-go/internal/repository/postgresql"
)

// calcWorkers bounds the per-employee calculation fan-out.
const calcWorkers = 8

// Config carries the payroll knobs from the environment.
type Config struct {
	LedgerCurrency     string
	HoursPerDay        decimal.Decimal
	OvertimeMultiplier decimal.Decimal
}

type PayslipServiceImpl struct {
	db           *database.DB
	cfg          Config
	periodRepo   period.PeriodRepository
	payslipRepo  payslip.PayslipRepository
	employeeRepo employee.EmployeeRepository
	refdataRepo  refdata.RefdataRepository
}

func NewPayslipService(
	db *database.DB,
	cfg Config,
	periodRepo period.PeriodRepository,
	payslipRepo payslip.PayslipRepository,
	employeeRepo employee.EmployeeRepository,
	refdataRepo refdata.RefdataRepository,
) payslip.PayslipService {
	return &PayslipServiceImpl{
		db:           db,
		cfg:          cfg,
		periodRepo:   periodRepo,
		payslipRepo:  payslipRepo,
		employeeRepo: employeeRepo,
		refdataRepo:  refdataRepo,
	}
}

// closeDate is the last day of the period's month; FX rates and tax rules
// are resolved against it.
func closeDate(p period.Period) time.Time {
	return time.Date(p.Year, time.Month(p.Month)+1, 0, 0, 0, 0, 0, time.UTC)
}

// calcContext is the configuration snapshot shared by every employee of one
// generation run. Loading it once keeps the run deterministic even if
// reference data changes mid-flight.
type calcContext struct {
	schemes map[string]refdata.ContributionScheme
	taxRule refdata.TaxRule
	family  refdata.FamilyAllowance
	fxRates map[string]decimal.Decimal
}

func (s *PayslipServiceImpl) loadCalcContext(ctx context.Context, p period.Period, employees []employee.Employee) (calcContext, error) {
	at := closeDate(p)

	schemes, err := s.refdataRepo.GetActiveSchemes(ctx)
	if err != nil {
		return calcContext{}, fmt.Errorf("load contribution schemes: %w", err)
	}
	taxRule, err := s.refdataRepo.GetTaxRule(ctx, at)
	if err != nil {
		return calcContext{}, err
	}
	family, err := s.refdataRepo.GetFamilyAllowance(ctx)
	if err != nil {
		return calcContext{}, fmt.Errorf("load family allowance: %w", err)
	}

	fxRates := map[string]decimal.Decimal{s.cfg.LedgerCurrency: decimal.NewFromInt(1)}
	for _, emp := range employees {
		if _, ok := fxRates[emp.Currency]; ok {
			continue
		}
		rate, err := s.refdataRepo.GetFxRate(ctx, at, emp.Currency, s.cfg.LedgerCurrency)
		if err != nil {
			return calcContext{}, err
		}
		fxRates[emp.Currency] = rate.Rate
	}

	return calcContext{schemes: schemes, taxRule: taxRule, family: family, fxRates: fxRates}, nil
}

func (s *PayslipServiceImpl) calcForEmployee(ctx context.Context, p period.Period, cc calcContext, emp employee.Employee) (CalcResult, error) {
	att, found, err := s.employeeRepo.GetAttendance(ctx, p.ID, emp.ID)
	if err != nil {
		return CalcResult{}, fmt.Errorf("load attendance for employee %s: %w", emp.ID, err)
	}
	var attendance *employee.Attendance
	if found {
		attendance = &att
	}
	vars, err := s.employeeRepo.ListVariables(ctx, p.ID, emp.ID)
	if err != nil {
		return CalcResult{}, fmt.Errorf("load variables for employee %s: %w", emp.ID, err)
	}

	return Calculate(CalcInput{
		Employee:           emp,
		Attendance:         attendance,
		Variables:          vars,
		Schemes:            cc.schemes,
		TaxRule:            cc.taxRule,
		Family:             cc.family,
		FxRate:             cc.fxRates[emp.Currency],
		LedgerCurrency:     s.cfg.LedgerCurrency,
		HoursPerDay:        s.cfg.HoursPerDay,
		OvertimeMultiplier: s.cfg.OvertimeMultiplier,
	})
}

type employeeCalc struct {
	employee employee.Employee
	result   CalcResult
}

// runCalculations fans the pure calculation out over a bounded worker pool.
// Results come back sorted by employee ID so persistence order is stable.
func (s *PayslipServiceImpl) runCalculations(ctx context.Context, p period.Period, cc calcContext, employees []employee.Employee) ([]employeeCalc, error) {
	jobs := make(chan employee.Employee)
	var (
		mu       sync.Mutex
		results  []employeeCalc
		firstErr error
		wg       sync.WaitGroup
	)

	for w := 0; w < calcWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for emp := range jobs {
				res, err := s.calcForEmployee(ctx, p, cc, emp)
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
				} else {
					results = append(results, employeeCalc{employee: emp, result: res})
				}
				mu.Unlock()
			}
		}()
	}
	for _, emp := range employees {
		jobs <- emp
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	sort.Slice(results, func(i, j int) bool { return results[i].employee.ID < results[j].employee.ID })
	return results, nil
}

func (s *PayslipServiceImpl) GeneratePayslips(ctx context.Context, periodID string) (payslip.GenerateResult, error) {
	p, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return payslip.GenerateResult{}, err
	}
	if p.Status != period.StatusOpen {
		return payslip.GenerateResult{}, period.ErrConflict
	}

	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return payslip.GenerateResult{}, fmt.Errorf("list active employees: %w", err)
	}

	existing, err := s.payslipRepo.ExistingEmployeeIDs(ctx, periodID)
	if err != nil {
		return payslip.GenerateResult{}, err
	}

	var todo []employee.Employee
	skipped := 0
	for _, emp := range employees {
		if existing[emp.ID] {
			skipped++
			continue
		}
		if emp.BaseSalary.IsZero() {
			skipped++
			continue
		}
		todo = append(todo, emp)
	}

	result := payslip.GenerateResult{Skipped: skipped}
	if len(todo) == 0 {
		return result, nil
	}

	cc, err := s.loadCalcContext(ctx, p, todo)
	if err != nil {
		return payslip.GenerateResult{}, err
	}

	calcs, err := s.runCalculations(ctx, p, cc, todo)
	if err != nil {
		return payslip.GenerateResult{}, err
	}

	// Calculation is done; persistence is one all-or-nothing transaction.
	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		// The period must still be open when the payslips land.
		cur, err := s.periodRepo.GetByID(txCtx, periodID)
		if err != nil {
			return err
		}
		if cur.Status != period.StatusOpen {
			return period.ErrConflict
		}
		for _, c := range calcs {
			_, err := s.payslipRepo.Create(txCtx, payslip.Payslip{
				PeriodID:   periodID,
				EmployeeID: c.employee.ID,
				Gross:      c.result.Gross,
				Net:        c.result.Net,
				Currency:   c.result.Currency,
				Lines:      c.result.Lines,
			})
			if err != nil {
				return fmt.Errorf("create payslip for employee %s: %w", c.employee.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return payslip.GenerateResult{}, err
	}

	result.Created = len(calcs)
	metrics.PayslipsGenerated.Add(float64(result.Created))
	return result, nil
}

func (s *PayslipServiceImpl) RecalculatePayslip(ctx context.Context, payslipID string) (payslip.PayslipResponse, error) {
	ps, err := s.payslipRepo.GetByID(ctx, payslipID)
	if err != nil {
		return payslip.PayslipResponse{}, err
	}
	p, err := s.periodRepo.GetByID(ctx, ps.PeriodID)
	if err != nil {
		return payslip.PayslipResponse{}, err
	}
	if p.Status != period.StatusOpen {
		return payslip.PayslipResponse{}, period.ErrConflict
	}
	emp, err := s.employeeRepo.GetByID(ctx, ps.EmployeeID)
	if err != nil {
		return payslip.PayslipResponse{}, err
	}

	cc, err := s.loadCalcContext(ctx, p, []employee.Employee{emp})
	if err != nil {
		return payslip.PayslipResponse{}, err
	}
	res, err := s.calcForEmployee(ctx, p, cc, emp)
	if err != nil {
		return payslip.PayslipResponse{}, err
	}

	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		cur, err := s.periodRepo.GetByID(txCtx, ps.PeriodID)
		if err != nil {
			return err
		}
		if cur.Status != period.StatusOpen {
			return period.ErrConflict
		}
		return s.payslipRepo.ReplaceLines(txCtx, payslipID, res.Gross, res.Net, res.Lines)
	})
	if err != nil {
		return payslip.PayslipResponse{}, err
	}

	updated, err := s.payslipRepo.GetByID(ctx, payslipID)
	if err != nil {
		return payslip.PayslipResponse{}, err
	}
	return payslip.ToResponse(updated), nil
}

func (s *PayslipServiceImpl) GetPayslip(ctx context.Context, id string) (payslip.PayslipResponse, error) {
	ps, err := s.payslipRepo.GetByID(ctx, id)
	if err != nil {
		return payslip.PayslipResponse{}, err
	}
	return payslip.ToResponse(ps), nil
}

// PreviewPeriod runs the engine without persisting anything.
func (s *PayslipServiceImpl) PreviewPeriod(ctx context.Context, periodID string) (payslip.PreviewResponse, error) {
	p, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return payslip.PreviewResponse{}, err
	}
	if p.Status != period.StatusOpen {
		return payslip.PreviewResponse{}, period.ErrConflict
	}
	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return payslip.PreviewResponse{}, fmt.Errorf("list active employees: %w", err)
	}
	cc, err := s.loadCalcContext(ctx, p, employees)
	if err != nil {
		return payslip.PreviewResponse{}, err
	}
	calcs, err := s.runCalculations(ctx, p, cc, employees)
	if err != nil {
		return payslip.PreviewResponse{}, err
	}

	resp := payslip.PreviewResponse{Count: len(calcs)}
	for _, c := range calcs {
		row := payslip.PreviewRow{
			EmployeeID:      c.employee.ID,
			EmployeeName:    c.employee.FullName(),
			Gross:           c.result.Gross,
			Net:             c.result.Net,
			EmployerCharges: c.result.EmployerCharges,
		}
		for _, l := range c.result.Lines {
			row.Lines = append(row.Lines, payslip.LineResponse{
				Code:         l.Code,
				Label:        l.Label,
				Amount:       l.Amount,
				BaseAmount:   l.BaseAmount,
				Position:     l.Position,
				CostCenterID: l.CostCenterID,
				Meta:         l.Meta,
			})
		}
		resp.Results = append(resp.Results, row)
	}
	return resp, nil
}

func (s *PayslipServiceImpl) PeriodSummary(ctx context.Context, periodID string) (payslip.SummaryResponse, error) {
	if _, err := s.periodRepo.GetByID(ctx, periodID); err != nil {
		return payslip.SummaryResponse{}, err
	}
	slips, err := s.payslipRepo.ListByPeriod(ctx, periodID)
	if err != nil {
		return payslip.SummaryResponse{}, err
	}

	resp := payslip.SummaryResponse{
		EmployeeCount: len(slips),
		TotalsByCode:  make(map[payslip.LineCode]decimal.Decimal),
	}
	for _, ps := range slips {
		resp.TotalGross = resp.TotalGross.Add(ps.Gross)
		resp.TotalNet = resp.TotalNet.Add(ps.Net)
		for _, l := range ps.Lines {
			resp.TotalsByCode[l.Code] = resp.TotalsByCode[l.Code].Add(l.Amount)
			switch l.Code {
			case payslip.CodeCNSSEr, payslip.CodeONEM, payslip.CodeINPP:
				resp.TotalEmployerCharges = resp.TotalEmployerCharges.Add(l.Amount)
			}
		}
	}
	return resp, nil
}

func (s *PayslipServiceImpl) UpsertAttendance(ctx context.Context, periodID string, req employee.UpsertAttendanceRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	p, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return err
	}
	if p.Status != period.StatusOpen {
		return period.ErrConflict
	}
	return postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		for _, row := range req.Rows {
			if _, err := s.employeeRepo.GetByID(txCtx, row.EmployeeID); err != nil {
				return err
			}
			err := s.employeeRepo.UpsertAttendance(txCtx, employee.Attendance{
				PeriodID:      periodID,
				EmployeeID:    row.EmployeeID,
				DaysWorked:    row.DaysWorked,
				WorkingDays:   row.WorkingDays,
				OvertimeHours: row.OvertimeHours,
			})
			if err != nil {
				return fmt.Errorf("upsert attendance for employee %s: %w", row.EmployeeID, err)
			}
		}
		return nil
	})
}

// checkCostCenters rejects variable rows pointing at cost centers the
// reference list does not know. An unknown id would otherwise surface much
// later as a broken expense split in the posted entry.
func (s *PayslipServiceImpl) checkCostCenters(ctx context.Context, req employee.ReplaceVariablesRequest) error {
	used := false
	for _, row := range req.Rows {
		if row.CostCenterID != nil {
			used = true
			break
		}
	}
	if !used {
		return nil
	}

	centers, err := s.refdataRepo.ListCostCenters(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(centers))
	for _, c := range centers {
		known[c.ID] = true
	}

	var errs validator.ValidationErrors
	for i, row := range req.Rows {
		if row.CostCenterID != nil && !known[*row.CostCenterID] {
			errs = append(errs, validator.ValidationError{
				Field:   validator.IndexedField("rows", i, "cost_center_id"),
				Message: "unknown cost center",
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *PayslipServiceImpl) ReplaceVariables(ctx context.Context, periodID string, req employee.ReplaceVariablesRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	p, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return err
	}
	if p.Status != period.StatusOpen {
		return period.ErrConflict
	}
	if err := s.checkCostCenters(ctx, req); err != nil {
		return err
	}

	byEmployee := make(map[string][]employee.Variable)
	for _, row := range req.Rows {
		byEmployee[row.EmployeeID] = append(byEmployee[row.EmployeeID], employee.Variable{
			PeriodID:     periodID,
			EmployeeID:   row.EmployeeID,
			Kind:         row.Kind,
			Label:        row.Label,
			Amount:       row.Amount,
			CostCenterID: row.CostCenterID,
		})
	}

	return postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		for empID, vars := range byEmployee {
			if _, err := s.employeeRepo.GetByID(txCtx, empID); err != nil {
				if errors.Is(err, employee.ErrEmployeeNotFound) {
					return err
				}
				return fmt.Errorf("check employee %s: %w", empID, err)
			}
			if err := s.employeeRepo.ReplaceVariables(txCtx, periodID, empID, vars); err != nil {
				return fmt.Errorf("replace variables for employee %s: %w", empID, err)
			}
		}
		return nil
	})
}
