package contact

import (
	"time"

	"github.com/google/uuid"
)

// MaxPerUser caps how many emergency contacts a user may keep.
const MaxPerUser = 3

// EmergencyContact maps to the emergency_contacts table. At most one contact
// per user carries is_main.
type EmergencyContact struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Phone        string    `db:"phone" json:"phone"`
	Relationship *string   `db:"relationship" json:"relationship,omitempty"`
	IsMain       bool      `db:"is_main" json:"is_main"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
