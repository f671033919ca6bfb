package invitation

import (
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/platform/auth"
)

// Invitation maps to the invitations table. The token is the only credential
// needed to accept, so it never appears in list responses. The row is
// deleted on acceptance, which is what makes a token single-use.
type Invitation struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Role      auth.Role `db:"role" json:"role"`
	Token     string    `db:"token" json:"-"`
	InvitedBy uuid.UUID `db:"invited_by" json:"invited_by"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the invitation is past its expiry at the given time.
func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// CreateRequest is the admin payload for inviting a new account.
type CreateRequest struct {
	Email string    `json:"email"`
	Role  auth.Role `json:"role"`
}

// AcceptRequest completes an invitation with the invitee's details.
type AcceptRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}
