package profile

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*PatientProfile, error)
	Upsert(ctx context.Context, p *PatientProfile) error
}
