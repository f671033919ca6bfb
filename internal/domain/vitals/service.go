package vitals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/platform/auth"
)

var ErrNotFound = errors.New("record not found")

var measurementTypes = map[string]bool{
	MeasurementFasting:  true,
	MeasurementPostMeal: true,
	MeasurementRandom:   true,
}

type Service struct {
	pressure BloodPressureRepository
	sugar    BloodSugarRepository
}

func NewService(pressure BloodPressureRepository, sugar BloodSugarRepository) *Service {
	return &Service{pressure: pressure, sugar: sugar}
}

// -- Blood Pressure --

func (s *Service) CreateBloodPressure(ctx context.Context, rec *BloodPressureRecord) error {
	if rec.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if rec.Systolic <= 0 {
		return fmt.Errorf("systolic must be positive")
	}
	if rec.Diastolic <= 0 {
		return fmt.Errorf("diastolic must be positive")
	}
	if rec.Pulse <= 0 {
		return fmt.Errorf("pulse must be positive")
	}
	if rec.Diastolic >= rec.Systolic {
		return fmt.Errorf("diastolic must be below systolic")
	}
	if rec.MeasuredAt.IsZero() {
		rec.MeasuredAt = time.Now()
	}
	return s.pressure.Create(ctx, rec)
}

func (s *Service) ListBloodPressure(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*BloodPressureRecord, int, error) {
	return s.pressure.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) DeleteBloodPressure(ctx context.Context, id uuid.UUID, caller auth.Identity) error {
	return deleteScoped(ctx, id, caller, s.pressure.Delete, s.pressure.DeleteOwned)
}

// -- Blood Sugar --

func (s *Service) CreateBloodSugar(ctx context.Context, rec *BloodSugarRecord) error {
	if rec.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if rec.LevelMgDl <= 0 {
		return fmt.Errorf("level_mg_dl must be positive")
	}
	if rec.MeasurementType == "" {
		rec.MeasurementType = MeasurementRandom
	}
	if !measurementTypes[rec.MeasurementType] {
		return fmt.Errorf("invalid measurement_type %q", rec.MeasurementType)
	}
	if rec.MeasuredAt.IsZero() {
		rec.MeasuredAt = time.Now()
	}
	return s.sugar.Create(ctx, rec)
}

func (s *Service) ListBloodSugar(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*BloodSugarRecord, int, error) {
	return s.sugar.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) DeleteBloodSugar(ctx context.Context, id uuid.UUID, caller auth.Identity) error {
	return deleteScoped(ctx, id, caller, s.sugar.Delete, s.sugar.DeleteOwned)
}

// deleteScoped deletes unscoped for staff and owner-scoped otherwise, so a
// foreign row is indistinguishable from a missing one.
func deleteScoped(ctx context.Context, id uuid.UUID, caller auth.Identity,
	del func(context.Context, uuid.UUID) (bool, error),
	delOwned func(context.Context, uuid.UUID, uuid.UUID) (bool, error)) error {
	var found bool
	var err error
	if caller.Role.Staff() {
		found, err = del(ctx, id)
	} else {
		found, err = delOwned(ctx, id, caller.UserID)
	}
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}
