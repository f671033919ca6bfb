package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/platform/auth"
)

// User maps to the users table. The password hash never leaves the API.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Name         string     `db:"full_name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         auth.Role  `db:"role" json:"role"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
}

// RegisterRequest is the self-registration payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest changes the caller's own name and email.
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
