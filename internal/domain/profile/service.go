package profile

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

var channels = map[string]bool{
	ChannelEmail: true,
	ChannelSMS:   true,
	ChannelPhone: true,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the user's profile, falling back to defaults before the first
// save.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*PatientProfile, error) {
	p, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return Defaults(userID), nil
	}
	return p, nil
}

// Save upserts the user's profile.
func (s *Service) Save(ctx context.Context, p *PatientProfile) (*PatientProfile, error) {
	if p.UserID == uuid.Nil {
		return nil, fmt.Errorf("user_id is required")
	}
	if p.PreferredChannel == "" {
		p.PreferredChannel = ChannelEmail
	}
	if !channels[p.PreferredChannel] {
		return nil, fmt.Errorf("invalid preferred_channel %q", p.PreferredChannel)
	}

	// Keep the existing row id so the upsert updates in place.
	if existing, err := s.repo.GetByUser(ctx, p.UserID); err == nil {
		p.ID = existing.ID
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.GetByUser(ctx, p.UserID)
}
