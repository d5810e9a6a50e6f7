package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/daybookhq/daybook/pkg/errors"
	"github.com/daybookhq/daybook/pkg/pagination"

	"github.com/daybookhq/daybook/internal/domain"
	"github.com/daybookhq/daybook/internal/event"
	"github.com/daybookhq/daybook/internal/repository"
	"github.com/daybookhq/daybook/internal/storage"
)

// imageExtensions maps accepted upload content types to file extensions.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// PostService implements the business logic for diary entries.
type PostService struct {
	postRepo repository.PostRepository
	images   storage.Storage
	producer *event.Producer
	logger   *slog.Logger
}

// NewPostService creates a new post service.
func NewPostService(
	postRepo repository.PostRepository,
	images storage.Storage,
	producer *event.Producer,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		images:   images,
		producer: producer,
		logger:   logger,
	}
}

// CreatePostInput holds the parameters for creating a diary entry.
type CreatePostInput struct {
	Title   string
	Date    string
	Content string
}

// UpdatePostInput holds the parameters for updating a diary entry.
type UpdatePostInput struct {
	Title   string
	Date    string
	Content string
}

// Create records a new diary entry for the author. The date defaults to
// today; a second entry on the same date is rejected.
func (s *PostService) Create(ctx context.Context, authorID int64, input CreatePostInput) (*domain.Post, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}

	date := input.Date
	if date == "" {
		date = time.Now().UTC().Format(domain.DateLayout)
	} else if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return nil, apperrors.InvalidInput("date must be in YYYY-MM-DD format")
	}

	post := &domain.Post{
		AuthorID: authorID,
		Title:    input.Title,
		Date:     date,
		Content:  input.Content,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.AlreadyExists("post", "date", date)
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	// Publish creation event (non-blocking on failure).
	if err := s.producer.PublishPostCreated(ctx, post); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish post.created event",
			slog.Int64("post_id", post.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "post created",
		slog.Int64("post_id", post.ID),
		slog.Int64("author_id", authorID),
		slog.String("date", date),
	)

	return post, nil
}

// Get returns one of the author's posts. Posts belonging to other users are
// reported as not found rather than forbidden.
func (s *PostService) Get(ctx context.Context, authorID, postID int64) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("post", fmt.Sprintf("%d", postID))
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post.AuthorID != authorID {
		return nil, apperrors.NotFound("post", fmt.Sprintf("%d", postID))
	}
	return post, nil
}

// List returns the author's posts newest-date-first with pagination.
func (s *PostService) List(ctx context.Context, authorID int64, params pagination.Params) (*pagination.Result[domain.Post], error) {
	posts, total, err := s.postRepo.ListByAuthor(ctx, authorID, params)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	result := pagination.NewResult(posts, total, params)
	return &result, nil
}

// Update modifies an existing entry owned by the author.
func (s *PostService) Update(ctx context.Context, authorID, postID int64, input UpdatePostInput) (*domain.Post, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if input.Date != "" {
		if _, err := time.Parse(domain.DateLayout, input.Date); err != nil {
			return nil, apperrors.InvalidInput("date must be in YYYY-MM-DD format")
		}
	}

	post, err := s.Get(ctx, authorID, postID)
	if err != nil {
		return nil, err
	}

	post.Title = input.Title
	post.Content = input.Content
	if input.Date != "" {
		post.Date = input.Date
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// Delete removes an entry owned by the author. A stored image is removed
// best-effort after the row is gone.
func (s *PostService) Delete(ctx context.Context, authorID, postID int64) error {
	post, err := s.Get(ctx, authorID, postID)
	if err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, postID, authorID); err != nil {
		return err
	}

	if post.ImageURL != "" {
		if err := s.images.Delete(ctx, imageKey(authorID, post.ImageURL)); err != nil {
			s.logger.WarnContext(ctx, "failed to delete post image",
				slog.Int64("post_id", postID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "post deleted",
		slog.Int64("post_id", postID),
		slog.Int64("author_id", authorID),
	)

	return nil
}

// UploadImage stores an image for the entry and records its URL. Only JPEG,
// PNG, WebP, and GIF are accepted; size limits are enforced by the handler.
func (s *PostService) UploadImage(ctx context.Context, authorID, postID int64, contentType string, body io.Reader) (*domain.Post, error) {
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported image type: %s", contentType))
	}

	post, err := s.Get(ctx, authorID, postID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("posts/%d/%s%s", authorID, uuid.New().String(), ext)
	url, err := s.images.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	if err := s.postRepo.SetImageURL(ctx, postID, url); err != nil {
		// Roll the orphaned object back best-effort.
		if delErr := s.images.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete orphaned image",
				slog.String("key", key),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, err
	}

	// Replace rather than accumulate: drop the previous image if there was one.
	if post.ImageURL != "" {
		if err := s.images.Delete(ctx, imageKey(authorID, post.ImageURL)); err != nil {
			s.logger.WarnContext(ctx, "failed to delete replaced image",
				slog.Int64("post_id", postID),
				slog.String("error", err.Error()),
			)
		}
	}

	post.ImageURL = url

	s.logger.InfoContext(ctx, "post image uploaded",
		slog.Int64("post_id", postID),
		slog.String("key", key),
	)

	return post, nil
}

// Calendar returns one row per dated entry for the author.
func (s *PostService) Calendar(ctx context.Context, authorID int64) ([]domain.CalendarDay, error) {
	days, err := s.postRepo.Calendar(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("load calendar: %w", err)
	}
	if days == nil {
		days = []domain.CalendarDay{}
	}
	return days, nil
}

// imageKey recovers the storage key from a stored image URL. Keys are the
// last three path segments: posts/<authorID>/<file>.
func imageKey(authorID int64, imageURL string) string {
	return fmt.Sprintf("posts/%d/%s", authorID, path.Base(imageURL))
}
