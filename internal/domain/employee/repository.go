package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)

	// Payroll inputs, keyed by (period, employee)
	GetAttendance(ctx context.Context, periodID, employeeID string) (Attendance, bool, error)
	UpsertAttendance(ctx context.Context, a Attendance) error
	ListVariables(ctx context.Context, periodID, employeeID string) ([]Variable, error)
	ReplaceVariables(ctx context.Context, periodID, employeeID string, vars []Variable) error
}
