package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/daybookhq/daybook/internal/domain"
	"github.com/daybookhq/daybook/pkg/database"
	apperrors "github.com/daybookhq/daybook/pkg/errors"
	"github.com/daybookhq/daybook/pkg/pagination"
)

// PostRepository implements repository.PostRepository using PostgreSQL.
type PostRepository struct {
	db database.DBTX
}

// NewPostRepository creates a new PostgreSQL-backed post repository.
func NewPostRepository(db database.DBTX) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a new post and increments the author's post counter in the
// same transaction. One post per author per date is enforced by a unique
// index; a second post on the same date maps to ErrAlreadyExists.
func (r *PostRepository) Create(ctx context.Context, p *domain.Post) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create post: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO posts (author_id, title, date, content, image_url)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING id, created_at`

	err = tx.QueryRow(ctx, query, p.AuthorID, p.Title, p.Date, p.Content, p.ImageURL).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("post", "date", p.Date)
		}
		return fmt.Errorf("insert post: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET number_of_posts = number_of_posts + 1 WHERE id = $1`,
		p.AuthorID,
	); err != nil {
		return fmt.Errorf("increment post counter: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create post: %w", err)
	}

	return nil
}

// GetByID retrieves a post by its ID.
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	query := `
		SELECT id, author_id, title, to_char(date, 'YYYY-MM-DD'), content, COALESCE(image_url, ''), created_at
		FROM posts
		WHERE id = $1`

	var p domain.Post
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.AuthorID,
		&p.Title,
		&p.Date,
		&p.Content,
		&p.ImageURL,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}

	return &p, nil
}

// ListByAuthor returns the author's posts newest-date-first with the total count.
func (r *PostRepository) ListByAuthor(ctx context.Context, authorID int64, params pagination.Params) ([]domain.Post, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM posts WHERE author_id = $1`, authorID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	query := `
		SELECT id, author_id, title, to_char(date, 'YYYY-MM-DD'), content, COALESCE(image_url, ''), created_at
		FROM posts
		WHERE author_id = $1
		ORDER BY date DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, authorID, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Date, &p.Content, &p.ImageURL, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, total, nil
}

// Update modifies the title, content, and date of an existing post.
func (r *PostRepository) Update(ctx context.Context, p *domain.Post) error {
	query := `
		UPDATE posts
		SET title = $1, content = $2, date = $3
		WHERE id = $4 AND author_id = $5`

	ct, err := r.db.Exec(ctx, query, p.Title, p.Content, p.Date, p.ID, p.AuthorID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("post", "date", p.Date)
		}
		return fmt.Errorf("update post: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("post", fmt.Sprintf("%d", p.ID))
	}

	return nil
}

// SetImageURL records the uploaded image location for a post.
func (r *PostRepository) SetImageURL(ctx context.Context, id int64, imageURL string) error {
	ct, err := r.db.Exec(ctx,
		`UPDATE posts SET image_url = $1 WHERE id = $2`, imageURL, id)
	if err != nil {
		return fmt.Errorf("set post image: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("post", fmt.Sprintf("%d", id))
	}

	return nil
}

// Delete removes a post and decrements the author's post counter in the same
// transaction.
func (r *PostRepository) Delete(ctx context.Context, id int64, authorID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete post: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("post", fmt.Sprintf("%d", id))
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET number_of_posts = number_of_posts - 1 WHERE id = $1 AND number_of_posts > 0`,
		authorID,
	); err != nil {
		return fmt.Errorf("decrement post counter: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete post: %w", err)
	}

	return nil
}

// Calendar returns one row per dated post for the author, oldest first.
func (r *PostRepository) Calendar(ctx context.Context, authorID int64) ([]domain.CalendarDay, error) {
	query := `
		SELECT to_char(date, 'YYYY-MM-DD'), id, image_url IS NOT NULL
		FROM posts
		WHERE author_id = $1
		ORDER BY date ASC`

	rows, err := r.db.Query(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("query calendar: %w", err)
	}
	defer rows.Close()

	var days []domain.CalendarDay
	for rows.Next() {
		var d domain.CalendarDay
		if err := rows.Scan(&d.Date, &d.PostID, &d.HasImage); err != nil {
			return nil, fmt.Errorf("scan calendar row: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calendar: %w", err)
	}

	return days, nil
}
