package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avohilabs/destiin/domain"
	"github.com/jmoiron/sqlx"
)

var _ domain.ActivityRepository = (*Repository)(nil)

// dbActivity represents an employee activity as stored in the database.
type dbActivity struct {
	Name         string         `db:"name"`
	Employee     string         `db:"employee"`
	EmployeeName string         `db:"employee_name"`
	Company      string         `db:"company"`
	BookingStage sql.NullString `db:"booking_stage"` // NULL until a stage has been reported.
	Extra        Metadata       `db:"extra"`
	Creation     time.Time      `db:"creation"`
	Modified     time.Time      `db:"modified"`
}

// toDomainActivity converts a dbActivity to a domain.EmployeeActivity.
func toDomainActivity(a *dbActivity) *domain.EmployeeActivity {
	return &domain.EmployeeActivity{
		Name:         a.Name,
		Employee:     a.Employee,
		EmployeeName: a.EmployeeName,
		Company:      a.Company,
		BookingStage: a.BookingStage.String,
		Extra:        map[string]any(a.Extra),
		Creation:     a.Creation,
		Modified:     a.Modified,
	}
}

// fromDomainActivity converts a domain.EmployeeActivity to a dbActivity.
func fromDomainActivity(a *domain.EmployeeActivity) *dbActivity {
	return &dbActivity{
		Name:         a.Name,
		Employee:     a.Employee,
		EmployeeName: a.EmployeeName,
		Company:      a.Company,
		BookingStage: sql.NullString{String: a.BookingStage, Valid: a.BookingStage != ""},
		Extra:        Metadata(a.Extra),
		Creation:     a.Creation,
		Modified:     a.Modified,
	}
}

// GetActivities retrieves every employee activity, most recently modified first.
func (repo *Repository) GetActivities(ctx context.Context) ([]*domain.EmployeeActivity, error) {
	var rows []*dbActivity
	query := `SELECT name, employee, employee_name, company, booking_stage, extra, creation, modified
		      FROM employee_activity
		      ORDER BY modified DESC`

	err := sqlx.SelectContext(ctx, repo.ext, &rows, query)
	if err != nil {
		return nil, fmt.Errorf("getting employee activities: %w", err)
	}

	activities := make([]*domain.EmployeeActivity, len(rows))
	for i, row := range rows {
		activities[i] = toDomainActivity(row)
	}
	return activities, nil
}

// InsertActivity stores a new employee activity.
func (repo *Repository) InsertActivity(ctx context.Context, activity *domain.EmployeeActivity) error {
	query := `INSERT INTO employee_activity (name, employee, employee_name, company, booking_stage, extra, creation, modified)
		      VALUES (:name, :employee, :employee_name, :company, :booking_stage, :extra, :creation, :modified)`

	_, err := sqlx.NamedExecContext(ctx, repo.ext, query, fromDomainActivity(activity))
	if err != nil {
		return fmt.Errorf("inserting employee activity %s: %w", activity.Name, err)
	}
	return nil
}

// FindOpenActivity returns the most recently modified activity of the employee that has not reached
// domain.BookingStageSuccess. Activities without a stage count as open.
func (repo *Repository) FindOpenActivity(ctx context.Context, employee string) (*domain.EmployeeActivity, error) {
	var row dbActivity
	query := `SELECT name, employee, employee_name, company, booking_stage, extra, creation, modified
		      FROM employee_activity
		      WHERE employee = ? AND IFNULL(booking_stage, '') != ?
		      ORDER BY modified DESC, rowid DESC
		      LIMIT 1`

	err := sqlx.GetContext(ctx, repo.ext, &row, query, employee, domain.BookingStageSuccess)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("finding open activity for %s: %w", employee, err)
	}
	return toDomainActivity(&row), nil
}

// UpdateActivityStage changes only the booking stage (and modification time) of an activity.
func (repo *Repository) UpdateActivityStage(ctx context.Context, name, stage string, modified time.Time) error {
	query := `UPDATE employee_activity SET booking_stage = ?, modified = ? WHERE name = ?`

	result, err := repo.ext.ExecContext(ctx, query, stage, modified, name)
	if err != nil {
		return fmt.Errorf("updating stage of activity %s: %w", name, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("fetching rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
