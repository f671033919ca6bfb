package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	List(ctx context.Context, status string, limit, offset int) ([]*Appointment, int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}
