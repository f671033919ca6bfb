package vitals

import (
	"context"

	"github.com/google/uuid"
)

type BloodPressureRepository interface {
	Create(ctx context.Context, rec *BloodPressureRecord) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*BloodPressureRecord, int, error)
	DeleteOwned(ctx context.Context, id, userID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type BloodSugarRepository interface {
	Create(ctx context.Context, rec *BloodSugarRecord) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*BloodSugarRecord, int, error)
	DeleteOwned(ctx context.Context, id, userID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
