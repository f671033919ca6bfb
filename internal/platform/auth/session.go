package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookie is the name of the HttpOnly cookie carrying the session token.
const SessionCookie = "caretrack_session"

// SessionClaims is the JWT payload of a session token. Subject holds the
// user id.
type SessionClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Sessions issues and verifies HMAC-signed session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewSessions creates a session manager. secure controls the cookie's Secure
// flag (off in development so plain-HTTP logins work).
func NewSessions(secret []byte, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{secret: secret, ttl: ttl, secure: secure}
}

// Issue signs a session token for the given identity.
func (s *Sessions) Issue(userID uuid.UUID, role Role) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Role: string(role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses a session token and returns the identity it carries.
func (s *Sessions) Verify(tokenStr string) (Identity, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("invalid session token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid session subject")
	}
	role, ok := ParseRole(claims.Role)
	if !ok {
		return Identity{}, fmt.Errorf("invalid session role")
	}

	return Identity{UserID: userID, Role: role}, nil
}

// Cookie builds the session cookie for a signed token.
func (s *Sessions) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(s.ttl),
	}
}

// ClearCookie builds an expired cookie that removes the session.
func (s *Sessions) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}
