package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// validTransitions encodes the appointment lifecycle: pending appointments
// get confirmed or cancelled, confirmed ones get completed or cancelled.
// Completed and cancelled are terminal.
var validTransitions = map[string]map[string]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusCompleted: true, StatusCancelled: true},
}

// CanTransition reports whether changing status from one value to the other is legal.
func CanTransition(from, to string) bool {
	return validTransitions[from][to]
}

// ValidStatus reports whether s names a known status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment maps to the appointments table.
type Appointment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	ScheduledAt time.Time `db:"scheduled_at" json:"scheduled_at"`
	Reason      *string   `db:"reason" json:"reason,omitempty"`
	DoctorName  *string   `db:"doctor_name" json:"doctor_name,omitempty"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// RescheduleRequest moves an appointment to a new time.
type RescheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

// StatusRequest is the staff payload for driving the lifecycle.
type StatusRequest struct {
	Status string `json:"status"`
}
