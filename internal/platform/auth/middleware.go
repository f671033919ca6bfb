package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// SessionMiddleware authenticates requests from the session cookie (or a
// bearer token, for non-browser clients) and attaches the Identity to the
// request context. Requests matched by skipper pass through unauthenticated.
func SessionMiddleware(sessions *Sessions, skipper func(echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper != nil && skipper(c) {
				return next(c)
			}

			tokenStr := tokenFromRequest(c)
			if tokenStr == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			id, err := sessions.Verify(tokenStr)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
			}

			ctx := context.WithValue(c.Request().Context(), identityKey, id)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// IdentityFromContext retrieves the authenticated caller. The second return
// is false for unauthenticated requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// WithIdentity returns a context carrying the given identity. Used by tests
// and by middleware.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// RequireRole returns middleware that allows the request only when the
// authenticated caller's role is in the given set. Admin passes every check.
// The handler body never runs on failure.
func RequireRole(roles ...Role) echo.MiddlewareFunc {
	allowed := make(map[Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if id.Role == RoleAdmin || allowed[id.Role] {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
	}
}

// RequireAuthenticated allows any logged-in caller.
func RequireAuthenticated() echo.MiddlewareFunc {
	return RequireRole(RoleAdmin, RoleSubadmin, RoleUser)
}
