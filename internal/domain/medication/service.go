package medication

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/platform/auth"
)

var ErrNotFound = errors.New("medication not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(m *Medication) error {
	if m.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if m.StartDate != nil && m.EndDate != nil && m.EndDate.Before(*m.StartDate) {
		return fmt.Errorf("end_date cannot be before start_date")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, m *Medication) error {
	if err := s.validate(m); err != nil {
		return err
	}
	return s.repo.Create(ctx, m)
}

// Get returns one medication, hiding rows the caller does not own unless the
// caller is staff.
func (s *Service) Get(ctx context.Context, id uuid.UUID, caller auth.Identity) (*Medication, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if m.UserID != caller.UserID && !caller.Role.Staff() {
		return nil, ErrNotFound
	}
	return m, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, updated *Medication, caller auth.Identity) (*Medication, error) {
	existing, err := s.Get(ctx, id, caller)
	if err != nil {
		return nil, err
	}

	updated.ID = existing.ID
	updated.UserID = existing.UserID
	if err := s.validate(updated); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, caller auth.Identity) error {
	if _, err := s.Get(ctx, id, caller); err != nil {
		return err
	}
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Medication, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}
