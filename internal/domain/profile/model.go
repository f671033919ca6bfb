package profile

import (
	"time"

	"github.com/google/uuid"
)

// Notification channels a patient can prefer.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelPhone = "phone"
)

// PatientProfile holds per-user notification preferences. One row per user.
type PatientProfile struct {
	ID                   uuid.UUID              `json:"id" db:"id"`
	UserID               uuid.UUID              `json:"user_id" db:"user_id"`
	PreferredChannel     string                 `json:"preferred_channel" db:"preferred_channel"`
	AppointmentReminders bool                   `json:"appointment_reminders" db:"appointment_reminders"`
	MedicationReminders  bool                   `json:"medication_reminders" db:"medication_reminders"`
	Preferences          map[string]interface{} `json:"preferences" db:"preferences"`
	CreatedAt            time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at" db:"updated_at"`
}

// Defaults returns the profile a user has before saving one.
func Defaults(userID uuid.UUID) *PatientProfile {
	return &PatientProfile{
		UserID:               userID,
		PreferredChannel:     ChannelEmail,
		AppointmentReminders: true,
		MedicationReminders:  true,
	}
}
