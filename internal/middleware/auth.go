package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tokeley/researchlog/internal/auth"
)

type key string

const (
	identityKey key = "identity"
	holderKey   key = "identity_holder"
)

// identityHolder lets RequestLog, which runs outside the auth middleware,
// see who the caller turned out to be.
type identityHolder struct {
	userID string
}

func withIdentityHolder(ctx context.Context, h *identityHolder) context.Context {
	return context.WithValue(ctx, holderKey, h)
}

// Verifier turns a bearer token into a caller identity.
type Verifier interface {
	Verify(token string) (auth.Identity, error)
}

// OptionalAuth attaches the caller identity when a valid bearer token is present.
// A missing or invalid token leaves the request anonymous.
func OptionalAuth(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if id, err := v.Verify(token); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects the request with 401 unless it carries a valid bearer token.
func RequireAuth(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeJSONError(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			id, err := v.Verify(token)
			if err != nil {
				writeJSONError(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	if h, ok := ctx.Value(holderKey).(*identityHolder); ok {
		h.userID = id.UserID
	}
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the caller identity set by OptionalAuth or RequireAuth.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
