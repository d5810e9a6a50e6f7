package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/daybookhq/daybook/internal/domain"
)

// Kind is the token class carried in the "type" claim.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	// ErrInvalidToken covers bad signatures, malformed structure, expiry,
	// and unusable subject claims.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenKind is returned when a token of the wrong kind is presented,
	// e.g. an access token at the refresh endpoint.
	ErrTokenKind = errors.New("invalid token type")
)

// Payload is the trusted content of a decoded token.
type Payload struct {
	UserID int64
	Kind   Kind
	Scopes []string
}

type tokenClaims struct {
	Type   string   `json:"type"`
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

// Manager issues and decodes HMAC-signed JWTs.
type Manager struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager creates a token manager. Only the HS256 family is supported;
// the refresh lifetime must exceed the access lifetime.
func NewManager(secret, algorithm string, accessTTL, refreshTTL time.Duration) (*Manager, error) {
	var method jwt.SigningMethod
	switch algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm: %q", algorithm)
	}
	if refreshTTL <= accessTTL {
		return nil, fmt.Errorf("refresh token lifetime (%s) must exceed access token lifetime (%s)", refreshTTL, accessTTL)
	}
	return &Manager{
		secret:     []byte(secret),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// IssueAccessToken creates a signed access token for the user.
func (m *Manager) IssueAccessToken(userID int64, scopes []string) (string, error) {
	return m.issue(userID, scopes, KindAccess, m.accessTTL)
}

// IssueRefreshToken creates a signed refresh token for the user.
func (m *Manager) IssueRefreshToken(userID int64, scopes []string) (string, error) {
	return m.issue(userID, scopes, KindRefresh, m.refreshTTL)
}

// IssuePair creates a matching access and refresh token pair.
func (m *Manager) IssuePair(userID int64, scopes []string) (*domain.TokenPair, error) {
	access, err := m.IssueAccessToken(userID, scopes)
	if err != nil {
		return nil, err
	}
	refresh, err := m.IssueRefreshToken(userID, scopes)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "bearer",
		ExpiresIn:        int64(m.accessTTL.Seconds()),
		RefreshExpiresIn: int64(m.refreshTTL.Seconds()),
	}, nil
}

func (m *Manager) issue(userID int64, scopes []string, kind Kind, ttl time.Duration) (string, error) {
	if scopes == nil {
		scopes = []string{}
	}
	now := time.Now().UTC()
	claims := &tokenClaims{
		Type:   string(kind),
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "daybook",
		},
	}

	token := jwt.NewWithClaims(m.method, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry of a token and checks its kind.
// A token without an exp claim is rejected outright. Signature, structure,
// expiry, and subject failures return ErrInvalidToken; a kind mismatch on an
// otherwise valid token returns ErrTokenKind.
func (m *Manager) Decode(tokenString string, expected Kind) (*Payload, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != m.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if Kind(claims.Type) != expected {
		return nil, ErrTokenKind
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, fmt.Errorf("%w: unusable subject %q", ErrInvalidToken, claims.Subject)
	}

	scopes := claims.Scopes
	if scopes == nil {
		scopes = []string{}
	}

	return &Payload{
		UserID: userID,
		Kind:   Kind(claims.Type),
		Scopes: scopes,
	}, nil
}
