// Package cache provides a Redis-backed read cache for GET endpoints. Keys
// are scoped by resource, query string and caller, and every successful
// mutation invalidates the cached reads of every resource that serves the
// affected rows (including admin mirrors, stats and the medical-records
// export), so clients only ever see confirmed server state.
package cache

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/caretrack/caretrack/internal/platform/auth"
)

const keyPrefix = "caretrack:resp"

// Config controls the response cache middleware.
type Config struct {
	TTL time.Duration
}

// captureWriter duplicates the response body so it can be stored after the
// handler runs.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Resource extracts the cache resource from a request path: the first two
// segments after /api (so /api/admin/users and /api/users are distinct).
func Resource(path string) string {
	trimmed := strings.TrimPrefix(path, "/api/")
	if trimmed == path {
		return ""
	}
	parts := strings.SplitN(trimmed, "/", 3)
	if parts[0] == "admin" && len(parts) > 1 {
		return "admin/" + parts[1]
	}
	return parts[0]
}

// Key builds the cache key for a request. Caller identity is part of the key
// because owner-scoped responses differ per user and must never leak across
// sessions.
func Key(resource, path, rawQuery, userID string) string {
	sum := sha1.Sum([]byte(path + "|" + rawQuery + "|" + userID))
	return fmt.Sprintf("%s:%s:%x", keyPrefix, resource, sum[:])
}

// AffectedResources maps a mutated resource to every cached resource that
// may serve the same rows. A resource always invalidates its own admin
// mirror and vice versa; appointments and medications additionally feed the
// medical-records export, appointments and users feed the admin stats, and
// an accepted invite changes the admin invitation listing.
func AffectedResources(resource string) []string {
	base := strings.TrimPrefix(resource, "admin/")
	affected := []string{base, "admin/" + base}
	switch base {
	case "appointments":
		affected = append(affected, "admin/stats", "medical-records")
	case "medications":
		affected = append(affected, "medical-records")
	case "me":
		affected = append(affected, "admin/users", "admin/stats")
	case "invite":
		affected = append(affected, "admin/invitations")
	}
	return affected
}

// invalidate removes every cached read whose data the mutation may have
// changed.
func invalidate(ctx context.Context, rdb *redis.Client, resource string) error {
	var keys []string
	for _, res := range AffectedResources(resource) {
		pattern := fmt.Sprintf("%s:%s:*", keyPrefix, res)
		iter := rdb.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err()
}

// Middleware returns the response cache middleware. A nil client disables
// caching entirely; Redis errors degrade to pass-through.
func Middleware(rdb *redis.Client, cfg Config, logger zerolog.Logger) echo.MiddlewareFunc {
	if rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			resource := Resource(req.URL.Path)
			if resource == "" {
				return next(c)
			}
			ctx := req.Context()

			if req.Method != http.MethodGet {
				err := next(c)
				if err == nil && c.Response().Status < 300 {
					if derr := invalidate(ctx, rdb, resource); derr != nil {
						logger.Warn().Err(derr).Str("resource", resource).Msg("cache invalidation failed")
					}
				}
				return err
			}

			var userID string
			if id, ok := auth.IdentityFromContext(ctx); ok {
				userID = id.UserID.String()
			}
			key := Key(resource, req.URL.Path, req.URL.RawQuery, userID)

			if body, err := rdb.Get(ctx, key).Bytes(); err == nil {
				c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
				c.Response().Header().Set("X-Cache", "HIT")
				return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, body)
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if cw.status == http.StatusOK && cw.buf.Len() > 0 {
				if serr := rdb.SetEx(ctx, key, cw.buf.Bytes(), ttl).Err(); serr != nil {
					logger.Warn().Err(serr).Str("resource", resource).Msg("cache store failed")
				}
			}
			return nil
		}
	}
}
