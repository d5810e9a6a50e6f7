package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/daybookhq/daybook/internal/domain"
	pkgkafka "github.com/daybookhq/daybook/pkg/kafka"
)

// Kafka topic constants for daybook domain events.
const (
	TopicUserRegistered      = "daybook.user.registered"
	TopicUserPasswordChanged = "daybook.user.password_changed"
	TopicPostCreated         = "daybook.post.created"
)

// Aggregate type constants.
const (
	AggregateTypeUser = "user"
	AggregateTypePost = "post"
)

// Source identifier for events originating from this server.
const SourceDaybook = "daybook"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	LoginID  string `json:"login_id"`
}

// UserPasswordChangedData is the payload for a user.password_changed event.
type UserPasswordChangedData struct {
	UserID int64 `json:"user_id"`
}

// PostCreatedData is the payload for a post.created event.
type PostCreatedData struct {
	ID       int64  `json:"id"`
	AuthorID int64  `json:"author_id"`
	Date     string `json:"date"`
}

// Producer publishes daybook domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:       user.ID,
		Username: user.Username,
		LoginID:  user.LoginID,
	}

	aggregateID := strconv.FormatInt(user.ID, 10)
	event, err := pkgkafka.NewEvent(TopicUserRegistered, aggregateID, AggregateTypeUser, SourceDaybook, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.Int64("user_id", user.ID),
	)

	return nil
}

// PublishUserPasswordChanged publishes a user.password_changed event.
func (p *Producer) PublishUserPasswordChanged(ctx context.Context, userID int64) error {
	data := UserPasswordChangedData{UserID: userID}

	aggregateID := strconv.FormatInt(userID, 10)
	event, err := pkgkafka.NewEvent(TopicUserPasswordChanged, aggregateID, AggregateTypeUser, SourceDaybook, data)
	if err != nil {
		return fmt.Errorf("create user.password_changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserPasswordChanged, event); err != nil {
		return fmt.Errorf("publish user.password_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.password_changed event",
		slog.Int64("user_id", userID),
	)

	return nil
}

// PublishPostCreated publishes a post.created event.
func (p *Producer) PublishPostCreated(ctx context.Context, post *domain.Post) error {
	data := PostCreatedData{
		ID:       post.ID,
		AuthorID: post.AuthorID,
		Date:     post.Date,
	}

	aggregateID := strconv.FormatInt(post.ID, 10)
	event, err := pkgkafka.NewEvent(TopicPostCreated, aggregateID, AggregateTypePost, SourceDaybook, data)
	if err != nil {
		return fmt.Errorf("create post.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicPostCreated, event); err != nil {
		return fmt.Errorf("publish post.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published post.created event",
		slog.Int64("post_id", post.ID),
		slog.Int64("author_id", post.AuthorID),
	)

	return nil
}
