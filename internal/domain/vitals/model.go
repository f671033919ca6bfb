package vitals

import (
	"time"

	"github.com/google/uuid"
)

// BloodPressureRecord maps to the blood_pressure_records table.
type BloodPressureRecord struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	Systolic   int       `db:"systolic" json:"systolic"`
	Diastolic  int       `db:"diastolic" json:"diastolic"`
	Pulse      int       `db:"pulse" json:"pulse"`
	MeasuredAt time.Time `db:"measured_at" json:"measured_at"`
	Notes      *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Blood sugar measurement contexts.
const (
	MeasurementFasting  = "fasting"
	MeasurementPostMeal = "post_meal"
	MeasurementRandom   = "random"
)

// BloodSugarRecord maps to the blood_sugar_records table.
type BloodSugarRecord struct {
	ID              uuid.UUID `db:"id" json:"id"`
	UserID          uuid.UUID `db:"user_id" json:"user_id"`
	LevelMgDl       float64   `db:"level_mg_dl" json:"level_mg_dl"`
	MeasurementType string    `db:"measurement_type" json:"measurement_type"`
	MeasuredAt      time.Time `db:"measured_at" json:"measured_at"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
