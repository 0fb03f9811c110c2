package destiin

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/avohilabs/destiin/domain"
	"github.com/google/uuid"
)

// BookingSummary is the listing form of a Travel Booking.
type BookingSummary struct {
	Name          string `json:"name"`
	EmployeeName  string `json:"employee_name"`
	BookingID     string `json:"booking_id"`
	HotelName     string `json:"hotel_name"`
	CheckInDate   string `json:"check_in_date"`
	CheckOutDate  string `json:"check_out_date"`
	BookingStatus string `json:"booking_status"`
}

// BookingList is returned by GetAllBookings.
type BookingList struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Data    []BookingSummary `json:"data"`
}

// BookingUpdateResult is returned by UpdateBooking. Name is empty when no booking was found.
type BookingUpdateResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Name    string `json:"name,omitempty"`
}

func bookingFields(booking *domain.TravelBooking) map[string]*string {
	return map[string]*string{
		"employee_id":    &booking.EmployeeID,
		"employee_name":  &booking.EmployeeName,
		"booking_id":     &booking.BookingID,
		"hotel_name":     &booking.HotelName,
		"check_in_date":  &booking.CheckInDate,
		"check_out_date": &booking.CheckOutDate,
		"booking_status": &booking.BookingStatus,
	}
}

// GetAllBookings lists the bookings of data["employee_id"], latest check-in first.
func (app *App) GetAllBookings(ctx context.Context, data Payload) (*BookingList, error) {
	employeeID, _ := data.String("employee_id")
	if employeeID == "" {
		return nil, newValidationError("Employee ID is required")
	}
	bookings, err := app.Repo.GetBookingsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("getting bookings of %s : %w", employeeID, err)
	}
	list := &BookingList{Success: true, Data: make([]BookingSummary, 0, len(bookings))}
	for _, b := range bookings {
		list.Data = append(list.Data, BookingSummary{
			Name:          b.Name,
			EmployeeName:  b.EmployeeName,
			BookingID:     b.BookingID,
			HotelName:     b.HotelName,
			CheckInDate:   b.CheckInDate,
			CheckOutDate:  b.CheckOutDate,
			BookingStatus: b.BookingStatus,
		})
	}
	list.Count = len(list.Data)
	return list, nil
}

// CreateBooking stores a new Travel Booking built from data.
func (app *App) CreateBooking(ctx context.Context, data Payload) (*CreateResult, error) {
	now := app.Now()
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating new uuid : %w", err)
	}
	booking := &domain.TravelBooking{
		Name:     id.String(),
		Extra:    make(map[string]any),
		Creation: now,
		Modified: now,
	}
	data.assign(bookingFields(booking), booking.Extra)

	if err := app.Repo.InsertBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("inserting booking : %w", err)
	}
	return &CreateResult{
		Success: true,
		Message: "Booking created successfully",
		Name:    booking.Name,
	}, nil
}

// UpdateBooking merges data into the most recently modified booking of data["employee_id"].
// A missing booking is reported in the result, not as an error.
func (app *App) UpdateBooking(ctx context.Context, data Payload) (*BookingUpdateResult, error) {
	employeeID, _ := data.String("employee_id")
	if employeeID == "" {
		return nil, newValidationError("Employee ID is required")
	}

	var result *BookingUpdateResult
	err := app.Repo.InTx(ctx, func(tx domain.Store) error {
		booking, err := tx.FindLatestBooking(ctx, employeeID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				result = &BookingUpdateResult{
					Success: false,
					Message: fmt.Sprintf("No booking found for Employee ID: %s", employeeID),
				}
				return nil
			}
			return fmt.Errorf("finding booking : %w", err)
		}

		extra := maps.Clone(booking.Extra)
		if extra == nil {
			extra = make(map[string]any)
		}
		data.assign(bookingFields(booking), extra)
		booking.Extra = extra
		booking.Modified = app.Now()

		if err := tx.UpdateBooking(ctx, booking); err != nil {
			return fmt.Errorf("updating booking %s : %w", booking.Name, err)
		}
		result = &BookingUpdateResult{
			Success: true,
			Message: fmt.Sprintf("Booking for Employee ID %s updated successfully", employeeID),
			Name:    booking.Name,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
