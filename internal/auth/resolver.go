package auth

import (
	"context"
	"errors"

	"github.com/daybookhq/daybook/internal/domain"
	apperrors "github.com/daybookhq/daybook/pkg/errors"
)

// UserGetter loads users by ID. Satisfied by the user repository.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Identity is an authenticated caller: the user record plus the scopes
// carried by the presented token.
type Identity struct {
	User   *domain.User
	Scopes []string
}

// Resolver turns a bearer token into an authenticated identity. It is
// stateless: signature and expiry are re-verified on every request, and the
// user lookup is the only suspension point.
type Resolver struct {
	tokens *Manager
	users  UserGetter
}

// NewResolver creates an identity resolver.
func NewResolver(tokens *Manager, users UserGetter) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve decodes the token, checks its kind, and loads the user it refers
// to. Every rejection maps to 401 except storage infrastructure failures,
// which surface as internal errors.
func (r *Resolver) Resolve(ctx context.Context, token string, kind Kind) (*Identity, error) {
	payload, err := r.tokens.Decode(token, kind)
	if err != nil {
		if errors.Is(err, ErrTokenKind) {
			return nil, apperrors.Unauthorized("invalid token type")
		}
		return nil, apperrors.Unauthorized("could not validate credentials")
	}

	user, err := r.users.GetByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// The token may be valid but the account is gone. Same generic
			// message as a bad token so deleted accounts are not probeable.
			return nil, apperrors.Unauthorized("could not validate credentials")
		}
		return nil, apperrors.Wrap(err, "resolve identity")
	}

	return &Identity{User: user, Scopes: payload.Scopes}, nil
}
