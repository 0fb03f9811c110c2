package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avohilabs/destiin/domain"
	"github.com/jmoiron/sqlx"
)

var _ domain.EmployeeRepository = (*Repository)(nil)

// dbEmployee represents an employee as stored in the database.
type dbEmployee struct {
	Name            string `db:"name"`
	NamingSeries    string `db:"naming_series"`
	FirstName       string `db:"first_name"`
	Gender          string `db:"gender"`
	DateOfBirth     string `db:"date_of_birth"`
	DateOfJoining   string `db:"date_of_joining"`
	Status          string `db:"status"`
	Company         string `db:"company"`
	ExpenseApprover string `db:"expense_approver"`
}

// FindEmployeeByFirstName returns the name of the oldest employee with the given first name.
func (repo *Repository) FindEmployeeByFirstName(ctx context.Context, firstName string) (string, error) {
	var name string
	query := `SELECT name FROM employee WHERE first_name = ? ORDER BY rowid LIMIT 1`

	err := sqlx.GetContext(ctx, repo.ext, &name, query, firstName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("finding employee %q: %w", firstName, err)
	}
	return name, nil
}

// InsertEmployee stores a new employee.
func (repo *Repository) InsertEmployee(ctx context.Context, employee *domain.Employee) error {
	row := dbEmployee(*employee)
	query := `INSERT INTO employee (name, naming_series, first_name, gender, date_of_birth, date_of_joining, status, company, expense_approver)
		      VALUES (:name, :naming_series, :first_name, :gender, :date_of_birth, :date_of_joining, :status, :company, :expense_approver)`

	_, err := sqlx.NamedExecContext(ctx, repo.ext, query, &row)
	if err != nil {
		return fmt.Errorf("inserting employee %s: %w", employee.Name, err)
	}
	return nil
}

// GetEmployee retrieves an employee by document name.
func (repo *Repository) GetEmployee(ctx context.Context, name string) (*domain.Employee, error) {
	var row dbEmployee
	query := `SELECT name, naming_series, first_name, gender, date_of_birth, date_of_joining, status, company, expense_approver
		      FROM employee WHERE name = ?`

	err := sqlx.GetContext(ctx, repo.ext, &row, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting employee %s: %w", name, err)
	}

	employee := domain.Employee(row)
	return &employee, nil
}
