package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/platform/auth"
)

var (
	ErrNotFound = errors.New("emergency contact not found")
	ErrLimit    = fmt.Errorf("at most %d emergency contacts are allowed", MaxPerUser)
)

// TxRunner executes fn inside a transaction. The production wiring is
// db.WithTx over the shared pool.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo Repository
	tx   TxRunner
}

func NewService(repo Repository, tx TxRunner) *Service {
	return &Service{repo: repo, tx: tx}
}

func validate(ec *EmergencyContact) error {
	if ec.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if strings.TrimSpace(ec.FullName) == "" {
		return fmt.Errorf("full_name is required")
	}
	if strings.TrimSpace(ec.Phone) == "" {
		return fmt.Errorf("phone is required")
	}
	return nil
}

// Create adds a contact, enforcing the per-user cap. The first contact a
// user adds becomes main automatically.
func (s *Service) Create(ctx context.Context, ec *EmergencyContact) error {
	if err := validate(ec); err != nil {
		return err
	}

	count, err := s.repo.CountByUser(ctx, ec.UserID)
	if err != nil {
		return err
	}
	if count >= MaxPerUser {
		return ErrLimit
	}
	ec.IsMain = count == 0
	return s.repo.Create(ctx, ec)
}

func (s *Service) get(ctx context.Context, id uuid.UUID, caller auth.Identity) (*EmergencyContact, error) {
	ec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if ec.UserID != caller.UserID && !caller.Role.Staff() {
		return nil, ErrNotFound
	}
	return ec, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, caller auth.Identity) (*EmergencyContact, error) {
	return s.get(ctx, id, caller)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, updated *EmergencyContact, caller auth.Identity) (*EmergencyContact, error) {
	existing, err := s.get(ctx, id, caller)
	if err != nil {
		return nil, err
	}

	updated.ID = existing.ID
	updated.UserID = existing.UserID
	if err := validate(updated); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes a contact. If the main contact is deleted the user is left
// without a main one until they pick another.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, caller auth.Identity) error {
	if _, err := s.get(ctx, id, caller); err != nil {
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

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*EmergencyContact, error) {
	return s.repo.ListByUser(ctx, userID)
}

// SetMain flags one contact as main. Clearing the previous flag and setting
// the new one happen in one transaction so there is never a moment with two
// main contacts on disk.
func (s *Service) SetMain(ctx context.Context, id uuid.UUID, caller auth.Identity) (*EmergencyContact, error) {
	ec, err := s.get(ctx, id, caller)
	if err != nil {
		return nil, err
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.ClearMain(ctx, ec.UserID); err != nil {
			return err
		}
		return s.repo.SetMain(ctx, ec.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
