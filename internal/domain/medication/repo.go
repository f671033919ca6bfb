package medication

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	Update(ctx context.Context, m *Medication) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Medication, int, error)
}
