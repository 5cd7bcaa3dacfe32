package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/utafrali/TravelGo/pkg/errors"
	"github.com/utafrali/TravelGo/pkg/httputil"
)

// SessionCookie is the cookie browsers send the session token in.
const SessionCookie = "travelgo_session"

type contextKeyType string

const identityKey contextKeyType = "identity"

// Identity is the resolved caller of a request.
type Identity struct {
	SessionID string
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}

// SessionResolver turns a bearer token into the identity of a live session.
type SessionResolver func(ctx context.Context, token string) (*Identity, error)

// TokenFromRequest returns the session token from the Authorization header
// or, failing that, the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate attaches the caller's identity to the context when the
// request carries a valid session token. Requests without one, or with an
// invalid or expired one, continue anonymously; authorization decisions are
// made downstream.
func Authenticate(resolve SessionResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := resolve(r.Context(), token)
			if err != nil {
				logger.DebugContext(r.Context(), "session not resolved", slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IdentityFromContext(r.Context()) == nil {
				httputil.WriteError(w, r, apperrors.Unauthorized("Unauthorized"), logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller identity or nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

// UserIDFromContext returns the authenticated user ID, if any.
func UserIDFromContext(ctx context.Context) string {
	if id := IdentityFromContext(ctx); id != nil {
		return id.UserID
	}
	return ""
}
