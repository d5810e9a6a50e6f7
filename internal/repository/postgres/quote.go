package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/daybookhq/daybook/internal/domain"
	"github.com/daybookhq/daybook/pkg/database"
	apperrors "github.com/daybookhq/daybook/pkg/errors"
)

// QuoteRepository implements repository.QuoteRepository using PostgreSQL.
type QuoteRepository struct {
	db database.DBTX
}

// NewQuoteRepository creates a new PostgreSQL-backed quote repository.
func NewQuoteRepository(db database.DBTX) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Random returns a uniformly random quote.
func (r *QuoteRepository) Random(ctx context.Context) (*domain.Quote, error) {
	query := `
		SELECT id, author, message
		FROM quotes
		ORDER BY random()
		LIMIT 1`

	return r.scanQuote(ctx, query)
}

// GetByID retrieves a quote by its ID.
func (r *QuoteRepository) GetByID(ctx context.Context, id int64) (*domain.Quote, error) {
	query := `
		SELECT id, author, message
		FROM quotes
		WHERE id = $1`

	return r.scanQuote(ctx, query, id)
}

// Bookmark records that the user saved the quote. Saving the same quote
// twice is a no-op.
func (r *QuoteRepository) Bookmark(ctx context.Context, userID, quoteID int64) error {
	query := `
		INSERT INTO quote_bookmarks (user_id, quote_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, quote_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, userID, quoteID); err != nil {
		return fmt.Errorf("bookmark quote: %w", err)
	}

	return nil
}

// Unbookmark removes the user's bookmark for the quote.
func (r *QuoteRepository) Unbookmark(ctx context.Context, userID, quoteID int64) error {
	query := `DELETE FROM quote_bookmarks WHERE user_id = $1 AND quote_id = $2`

	ct, err := r.db.Exec(ctx, query, userID, quoteID)
	if err != nil {
		return fmt.Errorf("unbookmark quote: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("bookmark", fmt.Sprintf("%d", quoteID))
	}

	return nil
}

// ListBookmarked returns the user's bookmarked quotes, most recently saved first.
func (r *QuoteRepository) ListBookmarked(ctx context.Context, userID int64) ([]domain.Quote, error) {
	query := `
		SELECT q.id, q.author, q.message
		FROM quotes q
		JOIN quote_bookmarks b ON b.quote_id = q.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	var quotes []domain.Quote
	for rows.Next() {
		var q domain.Quote
		if err := rows.Scan(&q.ID, &q.Author, &q.Message); err != nil {
			return nil, fmt.Errorf("scan bookmark row: %w", err)
		}
		q.Bookmarked = true
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookmarks: %w", err)
	}

	return quotes, nil
}

func (r *QuoteRepository) scanQuote(ctx context.Context, query string, args ...any) (*domain.Quote, error) {
	var q domain.Quote

	err := r.db.QueryRow(ctx, query, args...).Scan(&q.ID, &q.Author, &q.Message)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan quote: %w", err)
	}

	return &q, nil
}
