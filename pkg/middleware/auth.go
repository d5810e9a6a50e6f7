package middleware

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/daybookhq/daybook/pkg/errors"
	"github.com/daybookhq/daybook/pkg/httputil"
)

type contextKeyType string

const (
	userIDKey contextKeyType = "user_id"
	scopesKey contextKeyType = "scopes"
)

// Identity is the authenticated caller extracted by the auth middleware.
type Identity struct {
	UserID int64
	Scopes []string
}

// TokenValidator validates a bearer token and returns the caller's identity.
// This allows the service to inject its own validation logic.
type TokenValidator func(ctx context.Context, token string) (*Identity, error)

// Auth middleware validates bearer tokens and injects the identity into
// context. Validator errors keep their own status and message: token
// rejections surface as 401 with the validator's wording, while
// infrastructure failures stay 500 rather than masquerading as bad
// credentials.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteError(w, r, apperrors.Unauthorized("missing authorization header"), nil)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid authorization header format"), nil)
				return
			}

			identity, err := validate(r.Context(), parts[1])
			if err != nil {
				httputil.WriteError(w, r, err, nil)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, identity.UserID)
			ctx = context.WithValue(ctx, scopesKey, identity.Scopes)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScope middleware checks that the authenticated user carries one of
// the given scopes.
func RequireScope(scopes ...string) func(http.Handler) http.Handler {
	scopeSet := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		scopeSet[s] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, s := range ScopesFromContext(r.Context()) {
				if _, ok := scopeSet[s]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}
			httputil.WriteError(w, r, apperrors.Forbidden("insufficient permissions"), nil)
		})
	}
}

// UserIDFromContext extracts the authenticated user ID from the request
// context. It returns 0 when no identity is present.
func UserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return 0
}

// ScopesFromContext extracts the authenticated user's scopes from the request context.
func ScopesFromContext(ctx context.Context) []string {
	if scopes, ok := ctx.Value(scopesKey).([]string); ok {
		return scopes
	}
	return nil
}
