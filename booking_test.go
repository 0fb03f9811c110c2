package destiin

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func createTestBooking(t *testing.T, app *App, data Payload) string {
	t.Helper()
	result, err := app.CreateBooking(context.Background(), data)
	if err != nil {
		t.Fatalf("creating booking: %v", err)
	}
	return result.Name
}

func TestApp_CreateBooking(t *testing.T) {
	ctx := context.Background()
	app, repo := setupTestApp(t)

	result, err := app.CreateBooking(ctx, Payload{
		"employee_id":    "EMP-001",
		"employee_name":  "Asha Rao",
		"booking_id":     "BK-1",
		"hotel_name":     "Sea View",
		"check_in_date":  "2026-04-01",
		"check_out_date": "2026-04-03",
		"booking_status": "confirmed",
		"room_type":      "deluxe",
	})
	if err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}
	if !result.Success || result.Message != "Booking created successfully" || result.Name == "" {
		t.Fatalf("\nwanted:\nsuccessful result\ngot:\n%+v", result)
	}

	booking, err := repo.FindLatestBooking(ctx, "EMP-001")
	if err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}
	if booking.Name != result.Name || booking.HotelName != "Sea View" || booking.Extra["room_type"] != "deluxe" {
		t.Fatalf("\nwanted:\nstored booking %s\ngot:\n%+v", result.Name, booking)
	}
}

func TestApp_GetAllBookings(t *testing.T) {
	ctx := context.Background()

	t.Run("should require employee_id", func(t *testing.T) {
		app, _ := setupTestApp(t)
		_, err := app.GetAllBookings(ctx, Payload{})
		if !errors.Is(err, ErrValidation) || err.Error() != "Employee ID is required" {
			t.Fatalf("\nwanted:\nEmployee ID is required\ngot:\n%v", err)
		}
	})

	t.Run("should list the employee bookings by check-in date", func(t *testing.T) {
		app, _ := setupTestApp(t)
		early := createTestBooking(t, app, Payload{"employee_id": "EMP-001", "booking_id": "BK-1", "check_in_date": "2026-04-01"})
		late := createTestBooking(t, app, Payload{"employee_id": "EMP-001", "booking_id": "BK-2", "check_in_date": "2026-05-01"})
		createTestBooking(t, app, Payload{"employee_id": "EMP-002", "booking_id": "BK-3", "check_in_date": "2026-06-01"})

		list, err := app.GetAllBookings(ctx, Payload{"employee_id": "EMP-001"})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		want := &BookingList{
			Success: true,
			Count:   2,
			Data: []BookingSummary{
				{Name: late, BookingID: "BK-2", CheckInDate: "2026-05-01"},
				{Name: early, BookingID: "BK-1", CheckInDate: "2026-04-01"},
			},
		}
		if diff := cmp.Diff(want, list); diff != "" {
			t.Fatalf("list mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should return an empty list for an unknown employee", func(t *testing.T) {
		app, _ := setupTestApp(t)
		list, err := app.GetAllBookings(ctx, Payload{"employee_id": "EMP-404"})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if !list.Success || list.Count != 0 || list.Data == nil {
			t.Fatalf("\nwanted:\nempty successful list\ngot:\n%+v", list)
		}
	})
}

func TestApp_UpdateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("should require employee_id", func(t *testing.T) {
		app, _ := setupTestApp(t)
		_, err := app.UpdateBooking(ctx, Payload{"hotel_name": "x"})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("\nwanted:\nvalidation error\ngot:\n%v", err)
		}
	})

	t.Run("should report a missing booking in the result", func(t *testing.T) {
		app, _ := setupTestApp(t)
		result, err := app.UpdateBooking(ctx, Payload{"employee_id": "EMP-404"})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		want := &BookingUpdateResult{Success: false, Message: "No booking found for Employee ID: EMP-404"}
		if diff := cmp.Diff(want, result); diff != "" {
			t.Fatalf("result mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should merge the payload into the latest booking", func(t *testing.T) {
		app, repo := setupTestApp(t)
		older := createTestBooking(t, app, Payload{"employee_id": "EMP-001", "booking_id": "BK-1", "hotel_name": "Old Inn"})
		latest := createTestBooking(t, app, Payload{"employee_id": "EMP-001", "booking_id": "BK-2", "hotel_name": "Sea View", "room_type": "deluxe"})

		result, err := app.UpdateBooking(ctx, Payload{
			"employee_id":    "EMP-001",
			"booking_status": "cancelled",
			"refund":         "full",
		})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		want := &BookingUpdateResult{
			Success: true,
			Message: "Booking for Employee ID EMP-001 updated successfully",
			Name:    latest,
		}
		if diff := cmp.Diff(want, result); diff != "" {
			t.Fatalf("result mismatch (-want +got):\n%s", diff)
		}

		booking, err := repo.FindLatestBooking(ctx, "EMP-001")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if booking.Name != latest || booking.BookingStatus != "cancelled" || booking.HotelName != "Sea View" {
			t.Fatalf("\nwanted:\nupdated %s\ngot:\n%+v", latest, booking)
		}
		wantExtra := map[string]any{"room_type": "deluxe", "refund": "full"}
		if diff := cmp.Diff(wantExtra, booking.Extra); diff != "" {
			t.Fatalf("extra mismatch (-want +got):\n%s", diff)
		}

		list, _ := app.GetAllBookings(ctx, Payload{"employee_id": "EMP-001"})
		for _, b := range list.Data {
			if b.Name == older && b.BookingStatus != "" {
				t.Fatalf("\nwanted:\nolder booking untouched\ngot:\n%+v", b)
			}
		}
	})
}
