package user

import (
	"context"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/platform/auth"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	CountByRole(ctx context.Context) (map[auth.Role]int, error)
}
