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

var _ domain.BookingRepository = (*Repository)(nil)

// dbBooking represents a travel booking as stored in the database.
type dbBooking struct {
	Name          string    `db:"name"`
	EmployeeID    string    `db:"employee_id"`
	EmployeeName  string    `db:"employee_name"`
	BookingID     string    `db:"booking_id"`
	HotelName     string    `db:"hotel_name"`
	CheckInDate   string    `db:"check_in_date"`
	CheckOutDate  string    `db:"check_out_date"`
	BookingStatus string    `db:"booking_status"`
	Extra         Metadata  `db:"extra"`
	Creation      time.Time `db:"creation"`
	Modified      time.Time `db:"modified"`
}

const bookingColumns = `name, employee_id, employee_name, booking_id, hotel_name, check_in_date, check_out_date, booking_status, extra, creation, modified`

// toDomainBooking converts a dbBooking to a domain.TravelBooking.
func toDomainBooking(b *dbBooking) *domain.TravelBooking {
	return &domain.TravelBooking{
		Name:          b.Name,
		EmployeeID:    b.EmployeeID,
		EmployeeName:  b.EmployeeName,
		BookingID:     b.BookingID,
		HotelName:     b.HotelName,
		CheckInDate:   b.CheckInDate,
		CheckOutDate:  b.CheckOutDate,
		BookingStatus: b.BookingStatus,
		Extra:         map[string]any(b.Extra),
		Creation:      b.Creation,
		Modified:      b.Modified,
	}
}

// fromDomainBooking converts a domain.TravelBooking to a dbBooking.
func fromDomainBooking(b *domain.TravelBooking) *dbBooking {
	return &dbBooking{
		Name:          b.Name,
		EmployeeID:    b.EmployeeID,
		EmployeeName:  b.EmployeeName,
		BookingID:     b.BookingID,
		HotelName:     b.HotelName,
		CheckInDate:   b.CheckInDate,
		CheckOutDate:  b.CheckOutDate,
		BookingStatus: b.BookingStatus,
		Extra:         Metadata(b.Extra),
		Creation:      b.Creation,
		Modified:      b.Modified,
	}
}

// GetBookingsByEmployee retrieves all bookings of an employee ordered by check-in date, newest first.
func (repo *Repository) GetBookingsByEmployee(ctx context.Context, employeeID string) ([]*domain.TravelBooking, error) {
	var rows []*dbBooking
	query := `SELECT ` + bookingColumns + `
		      FROM travel_booking
		      WHERE employee_id = ?
		      ORDER BY check_in_date DESC`

	err := sqlx.SelectContext(ctx, repo.ext, &rows, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("getting bookings for %s: %w", employeeID, err)
	}

	bookings := make([]*domain.TravelBooking, len(rows))
	for i, row := range rows {
		bookings[i] = toDomainBooking(row)
	}
	return bookings, nil
}

// InsertBooking stores a new travel booking.
func (repo *Repository) InsertBooking(ctx context.Context, booking *domain.TravelBooking) error {
	query := `INSERT INTO travel_booking (` + bookingColumns + `)
		      VALUES (:name, :employee_id, :employee_name, :booking_id, :hotel_name, :check_in_date,
		              :check_out_date, :booking_status, :extra, :creation, :modified)`

	_, err := sqlx.NamedExecContext(ctx, repo.ext, query, fromDomainBooking(booking))
	if err != nil {
		return fmt.Errorf("inserting booking %s: %w", booking.Name, err)
	}
	return nil
}

// FindLatestBooking returns the most recently modified booking of the employee.
func (repo *Repository) FindLatestBooking(ctx context.Context, employeeID string) (*domain.TravelBooking, error) {
	var row dbBooking
	query := `SELECT ` + bookingColumns + `
		      FROM travel_booking
		      WHERE employee_id = ?
		      ORDER BY modified DESC, rowid DESC
		      LIMIT 1`

	err := sqlx.GetContext(ctx, repo.ext, &row, query, employeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("finding booking for %s: %w", employeeID, err)
	}
	return toDomainBooking(&row), nil
}

// UpdateBooking overwrites the stored booking identified by booking.Name.
func (repo *Repository) UpdateBooking(ctx context.Context, booking *domain.TravelBooking) error {
	query := `UPDATE travel_booking
		      SET employee_id = :employee_id, employee_name = :employee_name, booking_id = :booking_id,
		          hotel_name = :hotel_name, check_in_date = :check_in_date, check_out_date = :check_out_date,
		          booking_status = :booking_status, extra = :extra, modified = :modified
		      WHERE name = :name`

	result, err := sqlx.NamedExecContext(ctx, repo.ext, query, fromDomainBooking(booking))
	if err != nil {
		return fmt.Errorf("updating booking %s: %w", booking.Name, err)
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
