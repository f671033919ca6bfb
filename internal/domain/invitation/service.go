package invitation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/domain/user"
	"github.com/caretrack/caretrack/internal/platform/auth"
	"github.com/caretrack/caretrack/internal/platform/notification"
)

var (
	ErrNotFound = errors.New("invitation not found")
	ErrExpired  = errors.New("invitation has expired")
)

// AccountCreator creates the account when an invitation is accepted.
// Satisfied by *user.Service.
type AccountCreator interface {
	Create(ctx context.Context, name, email, password string, role auth.Role) (*user.User, error)
}

// TxRunner executes fn inside a transaction. The production wiring is
// db.WithTx over the shared pool.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo     Repository
	accounts AccountCreator
	notifier *notification.Dispatcher
	tx       TxRunner
	baseURL  string
	ttl      time.Duration
}

func NewService(repo Repository, accounts AccountCreator, notifier *notification.Dispatcher, tx TxRunner, baseURL string, ttl time.Duration) *Service {
	return &Service{repo: repo, accounts: accounts, notifier: notifier, tx: tx, baseURL: baseURL, ttl: ttl}
}

// Create stores a new invitation and emails the invite link.
func (s *Service) Create(ctx context.Context, req CreateRequest, invitedBy uuid.UUID) (*Invitation, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if !req.Role.Valid() {
		return nil, fmt.Errorf("invalid role %q", req.Role)
	}

	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	inv := &Invitation{
		Email:     email,
		Role:      req.Role,
		Token:     token,
		InvitedBy: invitedBy,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, notification.TemplateInvitation, inv.Email, map[string]string{
		"role":        inv.Role.String(),
		"invite_link": s.baseURL + "/invitations/" + inv.Token,
		"expires_at":  inv.ExpiresAt.Format("2006-01-02 15:04 MST"),
	})
	return inv, nil
}

// Get returns the invitation for a token if it is still acceptable.
func (s *Service) Get(ctx context.Context, token string) (*Invitation, error) {
	inv, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, ErrNotFound
	}
	if inv.Expired(time.Now()) {
		return nil, ErrExpired
	}
	return inv, nil
}

// Accept deletes the invitation and creates the account in one transaction,
// so a token can never yield two accounts.
func (s *Service) Accept(ctx context.Context, token string, req AcceptRequest) (*user.User, error) {
	var created *user.User
	err := s.tx(ctx, func(ctx context.Context) error {
		inv, err := s.Get(ctx, token)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, inv.ID); err != nil {
			return err
		}
		created, err = s.accounts.Create(ctx, req.Name, inv.Email, req.Password, inv.Role)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, notification.TemplateWelcome, created.Email, map[string]string{"name": created.Name})
	return created, nil
}

// List returns a page of invitations.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Invitation, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// PurgeExpired removes invitations past their expiry.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx)
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
