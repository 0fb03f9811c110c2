package destiin

import (
	"context"
	"errors"
	"fmt"

	"github.com/avohilabs/destiin/domain"
	"github.com/google/uuid"
)

// ActivitySummary is the listing form of an Employee Activity.
type ActivitySummary struct {
	Name         string `json:"name"`
	Employee     string `json:"employee"`
	EmployeeName string `json:"employee_name"`
	Company      string `json:"company"`
	BookingStage string `json:"booking_stage"`
}

// CreateResult is returned by the create operations.
type CreateResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Name    string `json:"name"`
}

// StageUpdateResult is returned by UpdateActivity.
type StageUpdateResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	EmployeeID   string `json:"employee_id"`
	BookingStage string `json:"booking_stage"`
}

// GetAllActivities lists every employee activity.
func (app *App) GetAllActivities(ctx context.Context) ([]ActivitySummary, error) {
	activities, err := app.Repo.GetActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting activities : %w", err)
	}
	summaries := make([]ActivitySummary, 0, len(activities))
	for _, a := range activities {
		summaries = append(summaries, ActivitySummary{
			Name:         a.Name,
			Employee:     a.Employee,
			EmployeeName: a.EmployeeName,
			Company:      a.Company,
			BookingStage: a.BookingStage,
		})
	}
	return summaries, nil
}

// CreateActivity stores a new Employee Activity built from data. Keys without a matching field are kept as extra fields.
func (app *App) CreateActivity(ctx context.Context, data Payload) (*CreateResult, error) {
	now := app.Now()
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating new uuid : %w", err)
	}
	activity := &domain.EmployeeActivity{
		Name:     id.String(),
		Extra:    make(map[string]any),
		Creation: now,
		Modified: now,
	}
	data.assign(map[string]*string{
		"employee":      &activity.Employee,
		"employee_name": &activity.EmployeeName,
		"company":       &activity.Company,
		"booking_stage": &activity.BookingStage,
	}, activity.Extra)

	if activity.Employee == "" {
		return nil, newValidationError("Employee is required")
	}

	if err := app.Repo.InsertActivity(ctx, activity); err != nil {
		return nil, fmt.Errorf("inserting activity : %w", err)
	}
	return &CreateResult{
		Success: true,
		Message: "Employee Activity created successfully",
		Name:    activity.Name,
	}, nil
}

// UpdateActivity sets the booking stage of the employee's most recent activity that has not reached booking_success.
func (app *App) UpdateActivity(ctx context.Context, data Payload) (*StageUpdateResult, error) {
	employeeID, _ := data.String("employee_id")
	if employeeID == "" {
		return nil, newValidationError("Employee ID is required")
	}
	stage, ok := data["booking_stage"]
	if !ok || stage == nil {
		return nil, newValidationError("booking_stage is required")
	}
	bookingStage := stringValue(stage)

	err := app.Repo.InTx(ctx, func(tx domain.Store) error {
		activity, err := tx.FindOpenActivity(ctx, employeeID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return newValidationError(fmt.Sprintf("No Employee Activity found for employee_id: %s", employeeID))
			}
			return fmt.Errorf("finding activity : %w", err)
		}
		if err := tx.UpdateActivityStage(ctx, activity.Name, bookingStage, app.Now()); err != nil {
			return fmt.Errorf("updating activity %s : %w", activity.Name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &StageUpdateResult{
		Success:      true,
		Message:      fmt.Sprintf("Booking stage updated successfully for employee_id %s", employeeID),
		EmployeeID:   employeeID,
		BookingStage: bookingStage,
	}, nil
}
