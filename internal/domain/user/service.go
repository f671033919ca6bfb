package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/platform/auth"
	"github.com/caretrack/caretrack/internal/platform/notification"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
)

const minPasswordLen = 8

type Service struct {
	repo       Repository
	notifier   *notification.Dispatcher
	bcryptCost int
}

func NewService(repo Repository, notifier *notification.Dispatcher, bcryptCost int) *Service {
	return &Service{repo: repo, notifier: notifier, bcryptCost: bcryptCost}
}

// Register creates a self-registered account with the user role and sends a
// welcome email.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	u, err := s.Create(ctx, req.Name, req.Email, req.Password, auth.RoleUser)
	if err != nil {
		return nil, err
	}
	s.notifier.Dispatch(ctx, notification.TemplateWelcome, u.Email, map[string]string{"name": u.Name})
	return u, nil
}

// Create validates and stores a new account with the given role. Used by
// registration and by invitation acceptance.
func (s *Service) Create(ctx context.Context, name, email, password string, role auth.Role) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and returns the account. The error is the same
// for an unknown email and a wrong password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !auth.VerifyPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	// A stale last_login_at is harmless.
	_ = s.repo.TouchLastLogin(ctx, u.ID)
	return u, nil
}

// Get returns one account by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile changes the caller's own name and email.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if email != u.Email {
		if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil && existing.ID != id {
			return nil, ErrEmailTaken
		}
	}

	u.Name = name
	u.Email = email
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// List returns a page of accounts with the total count.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// CountByRole returns the number of accounts per role.
func (s *Service) CountByRole(ctx context.Context) (map[auth.Role]int, error) {
	return s.repo.CountByRole(ctx)
}
