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

// QuestionRepository implements repository.QuestionRepository using PostgreSQL.
type QuestionRepository struct {
	db database.DBTX
}

// NewQuestionRepository creates a new PostgreSQL-backed question repository.
func NewQuestionRepository(db database.DBTX) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Random returns a uniformly random question.
func (r *QuestionRepository) Random(ctx context.Context) (*domain.Question, error) {
	query := `
		SELECT id, message
		FROM questions
		ORDER BY random()
		LIMIT 1`

	return r.scanQuestion(ctx, query)
}

// GetByID retrieves a question by its ID.
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*domain.Question, error) {
	query := `
		SELECT id, message
		FROM questions
		WHERE id = $1`

	return r.scanQuestion(ctx, query, id)
}

func (r *QuestionRepository) scanQuestion(ctx context.Context, query string, args ...any) (*domain.Question, error) {
	var q domain.Question

	err := r.db.QueryRow(ctx, query, args...).Scan(&q.ID, &q.Message)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan question: %w", err)
	}

	return &q, nil
}
