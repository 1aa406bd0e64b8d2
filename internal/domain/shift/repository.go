package shift

import "context"

type ShiftRepository interface {
	// GetBinding returns ErrBindingNotFound when the employee is unknown, resigned or unbound.
	GetBinding(ctx context.Context, employeeCode string) (Binding, error)
	GetByCode(ctx context.Context, code string) (Shift, error)
	// ListScheduledEmployees returns every employee that has a shift binding and no resignation date.
	ListScheduledEmployees(ctx context.Context) ([]ScheduledEmployee, error)
}
