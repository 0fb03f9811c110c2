package domain

import (
	"context"
	"time"
)

// BookingRepository defines the interface for managing Travel Bookings documents.
type BookingRepository interface {
	// GetBookingsByEmployee retrieves all bookings of an employee, newest check-in first.
	GetBookingsByEmployee(ctx context.Context, employeeID string) ([]*TravelBooking, error)

	// InsertBooking stores a new booking. The Name, Creation and Modified fields must be set by the caller.
	InsertBooking(ctx context.Context, booking *TravelBooking) error

	// FindLatestBooking returns the most recently modified booking of the employee.
	// It returns ErrNotFound if the employee has no bookings.
	FindLatestBooking(ctx context.Context, employeeID string) (*TravelBooking, error)

	// UpdateBooking overwrites every field of the booking identified by booking.Name.
	UpdateBooking(ctx context.Context, booking *TravelBooking) error
}

// TravelBooking is a hotel booking made for an employee.
// Dates are kept as the ISO strings the booking engine sends.
type TravelBooking struct {
	Name          string
	EmployeeID    string
	EmployeeName  string
	BookingID     string
	HotelName     string
	CheckInDate   string
	CheckOutDate  string
	BookingStatus string
	Extra         map[string]any // Any additional fields supplied by the client.
	Creation      time.Time
	Modified      time.Time
}
