package contact

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, ec *EmergencyContact) error
	GetByID(ctx context.Context, id uuid.UUID) (*EmergencyContact, error)
	Update(ctx context.Context, ec *EmergencyContact) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*EmergencyContact, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	ClearMain(ctx context.Context, userID uuid.UUID) error
	SetMain(ctx context.Context, id uuid.UUID) error
}
