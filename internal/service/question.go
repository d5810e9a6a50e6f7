package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	apperrors "github.com/daybookhq/daybook/pkg/errors"

	"github.com/daybookhq/daybook/internal/cache"
	"github.com/daybookhq/daybook/internal/domain"
	"github.com/daybookhq/daybook/internal/repository"
)

// questionOfDayKeyPrefix namespaces the day-pinned question cache entries.
const questionOfDayKeyPrefix = "daybook:question_of_day:"

// QuestionService implements the business logic for journaling prompts.
type QuestionService struct {
	questionRepo repository.QuestionRepository
	cache        cache.Cache
	logger       *slog.Logger
}

// NewQuestionService creates a new question service.
func NewQuestionService(questionRepo repository.QuestionRepository, c cache.Cache, logger *slog.Logger) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		cache:        c,
		logger:       logger,
	}
}

// Random returns a random prompt.
func (s *QuestionService) Random(ctx context.Context) (*domain.Question, error) {
	question, err := s.questionRepo.Random(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("question", "random")
		}
		return nil, fmt.Errorf("random question: %w", err)
	}
	return question, nil
}

// Today returns the prompt of the day. The first caller of the day pins a
// random prompt in the cache until midnight UTC; everyone else gets the same
// one. If the cache is unavailable the caller still gets a random prompt.
func (s *QuestionService) Today(ctx context.Context) (*domain.Question, error) {
	now := time.Now().UTC()
	key := questionOfDayKeyPrefix + now.Format(domain.DateLayout)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		if id, parseErr := strconv.ParseInt(cached, 10, 64); parseErr == nil {
			question, getErr := s.questionRepo.GetByID(ctx, id)
			if getErr == nil {
				return question, nil
			}
			// The pinned question vanished; fall through and pin a new one.
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.WarnContext(ctx, "question cache unavailable, serving random",
			slog.String("error", err.Error()),
		)
		return s.Random(ctx)
	}

	question, err := s.Random(ctx)
	if err != nil {
		return nil, err
	}

	midnight := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	if err := s.cache.Set(ctx, key, strconv.FormatInt(question.ID, 10), midnight.Sub(now)); err != nil {
		s.logger.WarnContext(ctx, "failed to pin question of the day",
			slog.String("error", err.Error()),
		)
	}

	return question, nil
}
