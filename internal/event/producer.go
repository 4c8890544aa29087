package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/umasankari220/BookReview/internal/domain"
	pkgkafka "github.com/umasankari220/BookReview/pkg/kafka"
)

// Kafka topic constants for book review domain events.
const (
	TopicUserRegistered = "bookreview.user.registered"
	TopicBookCreated    = "bookreview.book.created"
	TopicBookDeleted    = "bookreview.book.deleted"
	TopicReviewCreated  = "bookreview.review.created"
	TopicReviewUpdated  = "bookreview.review.updated"
	TopicReviewDeleted  = "bookreview.review.deleted"
)

// Aggregate type constants.
const (
	AggregateTypeUser   = "user"
	AggregateTypeBook   = "book"
	AggregateTypeReview = "review"
)

// Source identifier for events originating from this API.
const SourceBookReviewAPI = "bookreview-api"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// BookCreatedData is the payload for a book.created event.
type BookCreatedData struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	Genre   string `json:"genre"`
	AddedBy string `json:"added_by"`
}

// BookDeletedData is the payload for a book.deleted event.
type BookDeletedData struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ReviewEventData is the payload shared by review.created, review.updated,
// and review.deleted events.
type ReviewEventData struct {
	ID     string `json:"id"`
	BookID string `json:"book_id"`
	UserID string `json:"user_id"`
	Rating int    `json:"rating"`
}

// Producer publishes book review domain events to Kafka.
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
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID, AggregateTypeUser, SourceBookReviewAPI, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return nil
}

// PublishBookCreated publishes a book.created event.
func (p *Producer) PublishBookCreated(ctx context.Context, book *domain.Book) error {
	data := BookCreatedData{
		ID:      book.ID,
		Title:   book.Title,
		Author:  book.Author,
		Genre:   book.Genre,
		AddedBy: book.AddedBy,
	}

	event, err := pkgkafka.NewEvent(TopicBookCreated, book.ID, AggregateTypeBook, SourceBookReviewAPI, data)
	if err != nil {
		return fmt.Errorf("create book.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicBookCreated, event); err != nil {
		return fmt.Errorf("publish book.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published book.created event",
		slog.String("book_id", book.ID),
		slog.String("title", book.Title),
	)

	return nil
}

// PublishBookDeleted publishes a book.deleted event.
func (p *Producer) PublishBookDeleted(ctx context.Context, book *domain.Book) error {
	data := BookDeletedData{
		ID:    book.ID,
		Title: book.Title,
	}

	event, err := pkgkafka.NewEvent(TopicBookDeleted, book.ID, AggregateTypeBook, SourceBookReviewAPI, data)
	if err != nil {
		return fmt.Errorf("create book.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicBookDeleted, event); err != nil {
		return fmt.Errorf("publish book.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published book.deleted event",
		slog.String("book_id", book.ID),
	)

	return nil
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	return p.publishReviewEvent(ctx, TopicReviewCreated, review)
}

// PublishReviewUpdated publishes a review.updated event.
func (p *Producer) PublishReviewUpdated(ctx context.Context, review *domain.Review) error {
	return p.publishReviewEvent(ctx, TopicReviewUpdated, review)
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, review *domain.Review) error {
	return p.publishReviewEvent(ctx, TopicReviewDeleted, review)
}

func (p *Producer) publishReviewEvent(ctx context.Context, topic string, review *domain.Review) error {
	data := ReviewEventData{
		ID:     review.ID,
		BookID: review.BookID,
		UserID: review.UserID,
		Rating: review.Rating,
	}

	event, err := pkgkafka.NewEvent(topic, review.ID, AggregateTypeReview, SourceBookReviewAPI, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published review event",
		slog.String("topic", topic),
		slog.String("review_id", review.ID),
		slog.String("book_id", review.BookID),
	)

	return nil
}
