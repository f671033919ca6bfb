package medicalrecord

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord maps to the medical_records table. Each user has at most one
// record; the first save creates it and later saves update it in place.
type MedicalRecord struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender      *string    `db:"gender" json:"gender,omitempty"`
	BloodType   *string    `db:"blood_type" json:"blood_type,omitempty"`
	HeightCm    *float64   `db:"height_cm" json:"height_cm,omitempty"`
	WeightKg    *float64   `db:"weight_kg" json:"weight_kg,omitempty"`
	Allergies   *string    `db:"allergies" json:"allergies,omitempty"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// DiseaseHistory maps to the disease_histories table.
type DiseaseHistory struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	DiseaseName string     `db:"disease_name" json:"disease_name"`
	DiagnosedAt *time.Time `db:"diagnosed_at" json:"diagnosed_at,omitempty"`
	Status      *string    `db:"status" json:"status,omitempty"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
