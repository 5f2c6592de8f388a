package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mosala-erp/payroll-backend-go/internal/domain/employee"
	"github.com/mosala-erp/payroll-backend-go/internal/pkg/database"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, first_name, last_name, status, base_salary, currency, children, created_at
		FROM employees
		WHERE id = $1
	`

	var e employee.Employee
	err := q.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.FirstName, &e.LastName, &e.Status, &e.BaseSalary, &e.Currency, &e.Children, &e.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return e, nil
}

func (r *employeeRepository) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, first_name, last_name, status, base_salary, currency, children, created_at
		FROM employees
		WHERE status = $1
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, employee.EmploymentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		var e employee.Employee
		if err := rows.Scan(
			&e.ID, &e.FirstName, &e.LastName, &e.Status, &e.BaseSalary, &e.Currency, &e.Children, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}

	return employees, nil
}

func (r *employeeRepository) GetAttendance(ctx context.Context, periodID, employeeID string) (employee.Attendance, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, period_id, employee_id, days_worked, working_days, overtime_hours
		FROM payroll_attendance
		WHERE period_id = $1 AND employee_id = $2
	`

	var a employee.Attendance
	err := q.QueryRow(ctx, query, periodID, employeeID).Scan(
		&a.ID, &a.PeriodID, &a.EmployeeID, &a.DaysWorked, &a.WorkingDays, &a.OvertimeHours,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Attendance{}, false, nil
		}
		return employee.Attendance{}, false, fmt.Errorf("failed to get attendance: %w", err)
	}

	return a, true, nil
}

func (r *employeeRepository) UpsertAttendance(ctx context.Context, a employee.Attendance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_attendance (period_id, employee_id, days_worked, working_days, overtime_hours)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (period_id, employee_id) DO UPDATE SET
			days_worked = EXCLUDED.days_worked,
			working_days = EXCLUDED.working_days,
			overtime_hours = EXCLUDED.overtime_hours,
			updated_at = NOW()
	`

	_, err := q.Exec(ctx, query, a.PeriodID, a.EmployeeID, a.DaysWorked, a.WorkingDays, a.OvertimeHours)
	if err != nil {
		return fmt.Errorf("failed to upsert attendance: %w", err)
	}

	return nil
}

func (r *employeeRepository) ListVariables(ctx context.Context, periodID, employeeID string) ([]employee.Variable, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, period_id, employee_id, kind, label, amount, cost_center_id
		FROM payroll_variables
		WHERE period_id = $1 AND employee_id = $2
		ORDER BY kind, label
	`

	rows, err := q.Query(ctx, query, periodID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll variables: %w", err)
	}
	defer rows.Close()

	var vars []employee.Variable
	for rows.Next() {
		var v employee.Variable
		if err := rows.Scan(
			&v.ID, &v.PeriodID, &v.EmployeeID, &v.Kind, &v.Label, &v.Amount, &v.CostCenterID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll variable: %w", err)
		}
		vars = append(vars, v)
	}

	return vars, nil
}

// ReplaceVariables swaps the full variable set for one employee and period.
func (r *employeeRepository) ReplaceVariables(ctx context.Context, periodID, employeeID string, vars []employee.Variable) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `DELETE FROM payroll_variables WHERE period_id = $1 AND employee_id = $2`, periodID, employeeID)
	if err != nil {
		return fmt.Errorf("failed to delete payroll variables: %w", err)
	}

	query := `
		INSERT INTO payroll_variables (period_id, employee_id, kind, label, amount, cost_center_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, v := range vars {
		if _, err := q.Exec(ctx, query, periodID, employeeID, v.Kind, v.Label, v.Amount, v.CostCenterID); err != nil {
			return fmt.Errorf("failed to insert payroll variable: %w", err)
		}
	}

	return nil
}
