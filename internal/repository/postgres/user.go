package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/daybookhq/daybook/internal/domain"
	"github.com/daybookhq/daybook/pkg/database"
	apperrors "github.com/daybookhq/daybook/pkg/errors"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user into the database and fills in the generated ID.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (username, login_id, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, number_of_posts, created_at`

	err := r.db.QueryRow(ctx, query, u.Username, u.LoginID, u.PasswordHash).
		Scan(&u.ID, &u.NumberOfPosts, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "login_id", u.LoginID)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, username, login_id, password_hash, number_of_posts, created_at
		FROM users
		WHERE id = $1`

	return r.scanUser(ctx, query, id)
}

// GetByLoginID retrieves a user by their login ID.
func (r *UserRepository) GetByLoginID(ctx context.Context, loginID string) (*domain.User, error) {
	query := `
		SELECT id, username, login_id, password_hash, number_of_posts, created_at
		FROM users
		WHERE login_id = $1`

	return r.scanUser(ctx, query, loginID)
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1 WHERE id = $2`

	ct, err := r.db.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", fmt.Sprintf("%d", id))
	}

	return nil
}

// UpdateUsername replaces the display name.
func (r *UserRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	query := `UPDATE users SET username = $1 WHERE id = $2`

	ct, err := r.db.Exec(ctx, query, username, id)
	if err != nil {
		return fmt.Errorf("update username: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", fmt.Sprintf("%d", id))
	}

	return nil
}

// Delete removes a user. Posts and bookmarks go with it via ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", fmt.Sprintf("%d", id))
	}

	return nil
}

// scanUser is a helper that executes a query expected to return a single user row.
func (r *UserRepository) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Username,
		&u.LoginID,
		&u.PasswordHash,
		&u.NumberOfPosts,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}

// isUniqueViolation reports whether the error is a PostgreSQL unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
