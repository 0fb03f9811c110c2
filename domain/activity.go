package domain

import (
	"context"
	"time"
)

// BookingStageSuccess is the terminal booking stage of an employee activity.
// Activities in this stage are no longer picked up by stage updates.
const BookingStageSuccess = "booking_success"

// ActivityRepository defines the interface for managing Employee Activity documents.
type ActivityRepository interface {
	// GetActivities retrieves every employee activity.
	GetActivities(ctx context.Context) ([]*EmployeeActivity, error)

	// InsertActivity stores a new activity. The Name, Creation and Modified fields must be set by the caller.
	InsertActivity(ctx context.Context, activity *EmployeeActivity) error

	// FindOpenActivity returns the most recently modified activity of the employee
	// whose booking stage is not BookingStageSuccess. It returns ErrNotFound if there is none.
	FindOpenActivity(ctx context.Context, employee string) (*EmployeeActivity, error)

	// UpdateActivityStage changes the booking stage of the named activity.
	UpdateActivityStage(ctx context.Context, name, stage string, modified time.Time) error
}

// EmployeeActivity tracks where an employee is in the travel booking process.
type EmployeeActivity struct {
	Name         string         // Unique document name.
	Employee     string         // The employee identifier the activity belongs to.
	EmployeeName string         // Display name of the employee.
	Company      string         // Company of the employee.
	BookingStage string         // Current booking stage, free form until BookingStageSuccess.
	Extra        map[string]any // Any additional fields supplied on creation.
	Creation     time.Time
	Modified     time.Time
}
