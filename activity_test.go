package destiin

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/avohilabs/destiin/domain"
	"github.com/google/go-cmp/cmp"
)

func TestApp_CreateActivity(t *testing.T) {
	ctx := context.Background()

	t.Run("should store known fields and keep the rest as extra", func(t *testing.T) {
		app, repo := setupTestApp(t)

		result, err := app.CreateActivity(ctx, Payload{
			"doctype":       "Employee Activity",
			"name":          "ignored",
			"employee":      "EMP-001",
			"employee_name": "Asha Rao",
			"company":       "Destiin",
			"booking_stage": "searching",
			"destination":   "Goa",
			"nights":        json.Number("3"),
		})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if !result.Success || result.Message != "Employee Activity created successfully" || result.Name == "" {
			t.Fatalf("\nwanted:\nsuccessful result\ngot:\n%+v", result)
		}

		activities, err := repo.GetActivities(ctx)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(activities) != 1 {
			t.Fatalf("\nwanted:\n1 activity\ngot:\n%d", len(activities))
		}
		got := activities[0]
		want := &domain.EmployeeActivity{
			Name:         result.Name,
			Employee:     "EMP-001",
			EmployeeName: "Asha Rao",
			Company:      "Destiin",
			BookingStage: "searching",
			Extra:        map[string]any{"destination": "Goa", "nights": float64(3)},
			Creation:     baseTime,
			Modified:     baseTime,
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("activity mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should require an employee", func(t *testing.T) {
		app, _ := setupTestApp(t)

		_, err := app.CreateActivity(ctx, Payload{"employee_name": "Asha Rao"})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", ErrValidation, err)
		}
	})
}

func TestApp_GetAllActivities(t *testing.T) {
	ctx := context.Background()
	app, _ := setupTestApp(t)

	t.Run("should return an empty list without activities", func(t *testing.T) {
		activities, err := app.GetAllActivities(ctx)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if activities == nil || len(activities) != 0 {
			t.Fatalf("\nwanted:\nempty list\ngot:\n%v", activities)
		}
	})

	t.Run("should list every activity", func(t *testing.T) {
		for _, employee := range []string{"EMP-001", "EMP-002"} {
			if _, err := app.CreateActivity(ctx, Payload{"employee": employee, "company": "Destiin"}); err != nil {
				t.Fatalf("creating activity: %v", err)
			}
		}

		activities, err := app.GetAllActivities(ctx)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		employees := map[string]bool{}
		for _, a := range activities {
			employees[a.Employee] = true
			if a.Company != "Destiin" || a.Name == "" {
				t.Fatalf("\nwanted:\ncompany Destiin and a name\ngot:\n%+v", a)
			}
		}
		if len(activities) != 2 || !employees["EMP-001"] || !employees["EMP-002"] {
			t.Fatalf("\nwanted:\nEMP-001 and EMP-002\ngot:\n%+v", activities)
		}
	})
}

func TestApp_UpdateActivity(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		data    Payload
		wantErr string
	}{
		{name: "should require employee_id", data: Payload{"booking_stage": "x"}, wantErr: "Employee ID is required"},
		{name: "should require booking_stage", data: Payload{"employee_id": "EMP-001"}, wantErr: "booking_stage is required"},
		{name: "should reject a null booking_stage", data: Payload{"employee_id": "EMP-001", "booking_stage": nil}, wantErr: "booking_stage is required"},
		{name: "should report a missing activity", data: Payload{"employee_id": "EMP-404", "booking_stage": "x"}, wantErr: "No Employee Activity found for employee_id: EMP-404"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := setupTestApp(t)
			_, err := app.UpdateActivity(ctx, tt.data)
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("\nwanted:\n%s\ngot:\n%v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("\nwanted:\nvalidation error\ngot:\n%v", err)
			}
		})
	}

	t.Run("should update the latest open activity only", func(t *testing.T) {
		app, repo := setupTestApp(t)

		first, _ := app.CreateActivity(ctx, Payload{"employee": "EMP-001", "booking_stage": "searching"})
		second, _ := app.CreateActivity(ctx, Payload{"employee": "EMP-001"})
		done, _ := app.CreateActivity(ctx, Payload{"employee": "EMP-001", "booking_stage": domain.BookingStageSuccess})

		result, err := app.UpdateActivity(ctx, Payload{"employee_id": "EMP-001", "booking_stage": "payment_pending"})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		want := &StageUpdateResult{
			Success:      true,
			Message:      "Booking stage updated successfully for employee_id EMP-001",
			EmployeeID:   "EMP-001",
			BookingStage: "payment_pending",
		}
		if diff := cmp.Diff(want, result); diff != "" {
			t.Fatalf("result mismatch (-want +got):\n%s", diff)
		}

		stages := map[string]string{}
		activities, _ := repo.GetActivities(ctx)
		for _, a := range activities {
			stages[a.Name] = a.BookingStage
		}
		wantStages := map[string]string{
			first.Name:  "searching",
			second.Name: "payment_pending",
			done.Name:   domain.BookingStageSuccess,
		}
		if diff := cmp.Diff(wantStages, stages); diff != "" {
			t.Fatalf("stages mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should render non string stages as text", func(t *testing.T) {
		app, _ := setupTestApp(t)
		app.CreateActivity(ctx, Payload{"employee": "EMP-001"})

		result, err := app.UpdateActivity(ctx, Payload{"employee_id": "EMP-001", "booking_stage": json.Number("2")})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if result.BookingStage != "2" {
			t.Fatalf("\nwanted:\n2\ngot:\n%s", result.BookingStage)
		}
	})

	t.Run("should not reopen a finished activity", func(t *testing.T) {
		app, _ := setupTestApp(t)
		app.CreateActivity(ctx, Payload{"employee": "EMP-001"})

		if _, err := app.UpdateActivity(ctx, Payload{"employee_id": "EMP-001", "booking_stage": domain.BookingStageSuccess}); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		_, err := app.UpdateActivity(ctx, Payload{"employee_id": "EMP-001", "booking_stage": "searching"})
		if err == nil || err.Error() != "No Employee Activity found for employee_id: EMP-001" {
			t.Fatalf("\nwanted:\nnot found error\ngot:\n%v", err)
		}
	})
}
