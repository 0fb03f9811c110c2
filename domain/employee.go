package domain

import "context"

// EmployeeRepository defines the interface for managing Employee documents.
type EmployeeRepository interface {
	// FindEmployeeByFirstName returns the name of the first employee with the given first name.
	// It returns ErrNotFound if there is none.
	FindEmployeeByFirstName(ctx context.Context, firstName string) (string, error)

	// InsertEmployee stores a new employee. The Name must be set by the caller.
	InsertEmployee(ctx context.Context, employee *Employee) error

	// GetEmployee retrieves an employee by document name.
	GetEmployee(ctx context.Context, name string) (*Employee, error)
}

// Employee is a minimal HR employee record.
type Employee struct {
	Name            string // Document name generated from NamingSeries, e.g. HR-EMP-2026-00001.
	NamingSeries    string
	FirstName       string
	Gender          string
	DateOfBirth     string // YYYY-MM-DD
	DateOfJoining   string // YYYY-MM-DD
	Status          string
	Company         string
	ExpenseApprover string
}
