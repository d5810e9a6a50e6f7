package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/daybookhq/daybook/pkg/errors"

	"github.com/daybookhq/daybook/internal/domain"
	"github.com/daybookhq/daybook/internal/repository"
)

// QuoteService implements the business logic for quotes and bookmarks.
type QuoteService struct {
	quoteRepo repository.QuoteRepository
	logger    *slog.Logger
}

// NewQuoteService creates a new quote service.
func NewQuoteService(quoteRepo repository.QuoteRepository, logger *slog.Logger) *QuoteService {
	return &QuoteService{quoteRepo: quoteRepo, logger: logger}
}

// Random returns a random quote.
func (s *QuoteService) Random(ctx context.Context) (*domain.Quote, error) {
	quote, err := s.quoteRepo.Random(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("quote", "random")
		}
		return nil, fmt.Errorf("random quote: %w", err)
	}
	return quote, nil
}

// Bookmark saves a quote for the user. Bookmarking a quote twice is a no-op.
func (s *QuoteService) Bookmark(ctx context.Context, userID, quoteID int64) error {
	if _, err := s.quoteRepo.GetByID(ctx, quoteID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("quote", fmt.Sprintf("%d", quoteID))
		}
		return fmt.Errorf("get quote: %w", err)
	}

	if err := s.quoteRepo.Bookmark(ctx, userID, quoteID); err != nil {
		return fmt.Errorf("bookmark quote: %w", err)
	}

	s.logger.InfoContext(ctx, "quote bookmarked",
		slog.Int64("user_id", userID),
		slog.Int64("quote_id", quoteID),
	)

	return nil
}

// Unbookmark removes a saved quote.
func (s *QuoteService) Unbookmark(ctx context.Context, userID, quoteID int64) error {
	if err := s.quoteRepo.Unbookmark(ctx, userID, quoteID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("bookmark", fmt.Sprintf("%d", quoteID))
		}
		return fmt.Errorf("unbookmark quote: %w", err)
	}
	return nil
}

// Bookmarks returns the user's saved quotes.
func (s *QuoteService) Bookmarks(ctx context.Context, userID int64) ([]domain.Quote, error) {
	quotes, err := s.quoteRepo.ListBookmarked(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	if quotes == nil {
		quotes = []domain.Quote{}
	}
	return quotes, nil
}
