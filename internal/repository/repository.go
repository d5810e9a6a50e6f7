package repository

import (
	"context"

	"github.com/daybookhq/daybook/internal/domain"
	"github.com/daybookhq/daybook/pkg/pagination"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user and fills in the generated ID.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByLoginID retrieves a user by their login ID.
	GetByLoginID(ctx context.Context, loginID string) (*domain.User, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// UpdateUsername replaces the display name.
	UpdateUsername(ctx context.Context, id int64, username string) error

	// Delete removes a user and, via cascade, their posts and bookmarks.
	Delete(ctx context.Context, id int64) error
}

// PostRepository defines the interface for diary entry persistence.
type PostRepository interface {
	// Create inserts a new post and increments the author's post counter in
	// the same transaction.
	Create(ctx context.Context, post *domain.Post) error

	// GetByID retrieves a post by its identifier.
	GetByID(ctx context.Context, id int64) (*domain.Post, error)

	// ListByAuthor returns the author's posts newest-date-first.
	ListByAuthor(ctx context.Context, authorID int64, params pagination.Params) ([]domain.Post, int, error)

	// Update modifies the title, content, and date of an existing post.
	Update(ctx context.Context, post *domain.Post) error

	// SetImageURL records the uploaded image location for a post.
	SetImageURL(ctx context.Context, id int64, imageURL string) error

	// Delete removes a post and decrements the author's post counter in the
	// same transaction.
	Delete(ctx context.Context, id int64, authorID int64) error

	// Calendar returns one row per dated post for the author.
	Calendar(ctx context.Context, authorID int64) ([]domain.CalendarDay, error)
}

// QuoteRepository defines the interface for quote and bookmark persistence.
type QuoteRepository interface {
	// Random returns a uniformly random quote.
	Random(ctx context.Context) (*domain.Quote, error)

	// GetByID retrieves a quote by its identifier.
	GetByID(ctx context.Context, id int64) (*domain.Quote, error)

	// Bookmark records that the user saved the quote. Idempotent.
	Bookmark(ctx context.Context, userID, quoteID int64) error

	// Unbookmark removes the user's bookmark for the quote.
	Unbookmark(ctx context.Context, userID, quoteID int64) error

	// ListBookmarked returns the user's bookmarked quotes.
	ListBookmarked(ctx context.Context, userID int64) ([]domain.Quote, error)
}

// QuestionRepository defines the interface for journaling prompt persistence.
type QuestionRepository interface {
	// Random returns a uniformly random question.
	Random(ctx context.Context) (*domain.Question, error)

	// GetByID retrieves a question by its identifier.
	GetByID(ctx context.Context, id int64) (*domain.Question, error)
}
