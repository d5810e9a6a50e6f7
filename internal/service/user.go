package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode"

	apperrors "github.com/daybookhq/daybook/pkg/errors"

	"github.com/daybookhq/daybook/internal/auth"
	"github.com/daybookhq/daybook/internal/domain"
	"github.com/daybookhq/daybook/internal/event"
	"github.com/daybookhq/daybook/internal/repository"
)

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// defaultScopes are granted to every freshly authenticated session.
var defaultScopes = []string{"users"}

// UserService implements the business logic for accounts and authentication.
type UserService struct {
	userRepo repository.UserRepository
	hasher   *auth.Hasher
	tokens   *auth.Manager
	resolver *auth.Resolver
	producer *event.Producer
	logger   *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	hasher *auth.Hasher,
	tokens *auth.Manager,
	resolver *auth.Resolver,
	producer *event.Producer,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		resolver: resolver,
		producer: producer,
		logger:   logger,
	}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Username string
	LoginID  string
	Password string
}

// LoginInput holds the parameters for user login.
type LoginInput struct {
	LoginID  string
	Password string
}

// Register creates a new user account, hashes the password, and returns the
// profile with a fresh token pair.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.AuthResponse, error) {
	if input.Username == "" {
		return nil, apperrors.InvalidInput("username is required")
	}
	if input.LoginID == "" {
		return nil, apperrors.InvalidInput("login ID is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     input.Username,
		LoginID:      input.LoginID,
		PasswordHash: hashed,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.tokens.IssuePair(user.ID, defaultScopes)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.Int64("user_id", user.ID),
	)

	return &domain.AuthResponse{User: user, Tokens: tokens}, nil
}

// Login authenticates a user with login ID and password. Every rejection
// carries the same generic message so callers cannot tell whether the login
// ID or the password was wrong.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*domain.AuthResponse, error) {
	if input.LoginID == "" || input.Password == "" {
		return nil, apperrors.InvalidCredentials()
	}

	user, err := s.userRepo.GetByLoginID(ctx, input.LoginID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Burn a hash comparison so unknown login IDs take as long as
			// wrong passwords.
			s.hasher.VerifyDummy()
			return nil, apperrors.InvalidCredentials()
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	ok, err := s.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		// Corrupt stored hash. Log the real cause, tell the client nothing.
		s.logger.ErrorContext(ctx, "stored password hash is unusable",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.InvalidCredentials()
	}
	if !ok {
		return nil, apperrors.InvalidCredentials()
	}

	tokens, err := s.tokens.IssuePair(user.ID, defaultScopes)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.Int64("user_id", user.ID),
	)

	return &domain.AuthResponse{User: user, Tokens: tokens}, nil
}

// Refresh exchanges a refresh token for a fresh pair. The scopes carried by
// the presented token are carried through unchanged. Presenting an access
// token here is rejected with "invalid token type".
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResponse, error) {
	if refreshToken == "" {
		return nil, apperrors.Unauthorized("could not validate credentials")
	}

	identity, err := s.resolver.Resolve(ctx, refreshToken, auth.KindRefresh)
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokens.IssuePair(identity.User.ID, identity.Scopes)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "tokens refreshed",
		slog.Int64("user_id", identity.User.ID),
	)

	return &domain.AuthResponse{User: identity.User, Tokens: tokens}, nil
}

// GetProfile returns the user's profile.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", fmt.Sprintf("%d", userID))
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the old password and stores a hash of the new one.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	ok, err := s.hasher.Verify(oldPassword, user.PasswordHash)
	if err != nil {
		s.logger.ErrorContext(ctx, "stored password hash is unusable",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return apperrors.InvalidCredentials()
	}
	if !ok {
		return apperrors.InvalidCredentials()
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hashed); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	// Publish password changed event (non-blocking on failure).
	if err := s.producer.PublishUserPasswordChanged(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.password_changed event",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password changed",
		slog.Int64("user_id", userID),
	)

	return nil
}

// ChangeUsername updates the display name.
func (s *UserService) ChangeUsername(ctx context.Context, userID int64, username string) error {
	if username == "" {
		return apperrors.InvalidInput("username is required")
	}

	if err := s.userRepo.UpdateUsername(ctx, userID, username); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "username changed",
		slog.Int64("user_id", userID),
	)

	return nil
}

// DeleteAccount verifies the password and removes the account along with its
// posts and bookmarks.
func (s *UserService) DeleteAccount(ctx context.Context, userID int64, password string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.ErrorContext(ctx, "stored password hash is unusable",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return apperrors.InvalidCredentials()
	}
	if !ok {
		return apperrors.InvalidCredentials()
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.InfoContext(ctx, "account deleted",
		slog.Int64("user_id", userID),
	)

	return nil
}

// validatePassword enforces the password policy: at least 8 characters with
// an uppercase letter, a lowercase letter, and a digit.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return apperrors.InvalidInput("password must contain uppercase, lowercase, and digit characters")
	}

	return nil
}
