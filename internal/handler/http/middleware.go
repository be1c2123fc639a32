package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gnimmelf/eike-storefront/pkg/logger"
)

// sessionCookieName carries the opaque session id; all session state lives
// server-side in Redis.
const sessionCookieName = "eike_session"

type contextKey string

const sessionIDContextKey contextKey = "session_id"

// Session ensures every request carries a storefront session id: it reads the
// session cookie, minting a fresh id (and cookie) when absent, and stores the
// id in the request context. The request-scoped logger is re-enriched so page
// and cart logs carry the session id.
func Session(ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if cookie, err := r.Cookie(sessionCookieName); err == nil {
				if _, parseErr := uuid.Parse(cookie.Value); parseErr == nil {
					sid = cookie.Value
				}
			}

			if sid == "" {
				sid = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    sid,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionIDContextKey, sid)
			ctx = logger.WithSessionID(ctx, sid)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With("session_id", sid))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionID returns the request's storefront session id, or "" outside the
// Session middleware.
func SessionID(ctx context.Context) string {
	if sid, ok := ctx.Value(sessionIDContextKey).(string); ok {
		return sid
	}
	return ""
}
