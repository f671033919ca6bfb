package medicalrecord

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*MedicalRecord, error)
	Upsert(ctx context.Context, rec *MedicalRecord) error
	List(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error)
}

type DiseaseHistoryRepository interface {
	Create(ctx context.Context, dh *DiseaseHistory) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*DiseaseHistory, int, error)
	DeleteOwned(ctx context.Context, id, userID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
