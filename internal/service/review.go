package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/umasankari220/BookReview/internal/domain"
	"github.com/umasankari220/BookReview/internal/event"
	"github.com/umasankari220/BookReview/internal/repository"
	apperrors "github.com/umasankari220/BookReview/pkg/errors"
)

// ReviewService implements the business logic for review operations. Every
// mutation triggers a rating recalculation for the affected book.
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	bookRepo   repository.BookRepository
	aggregator *RatingAggregator
	producer   *event.Producer
	logger     *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	bookRepo repository.BookRepository,
	aggregator *RatingAggregator,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		bookRepo:   bookRepo,
		aggregator: aggregator,
		producer:   producer,
		logger:     logger,
	}
}

// CreateReviewInput holds the parameters for creating a review.
type CreateReviewInput struct {
	BookID  string
	Rating  int
	Comment string
}

// UpdateReviewInput holds the parameters for updating a review. Nil fields
// are left unchanged.
type UpdateReviewInput struct {
	Rating  *int
	Comment *string
}

// Create adds a review for a book on behalf of a user. A user may review a
// given book at most once.
func (s *ReviewService) Create(ctx context.Context, userID string, input CreateReviewInput) (*domain.Review, error) {
	if err := validateReviewFields(input.Rating, input.Comment); err != nil {
		return nil, err
	}

	// The book must exist before a review can reference it.
	if _, err := s.bookRepo.GetByID(ctx, input.BookID); err != nil {
		return nil, fmt.Errorf("get book for review: %w", err)
	}

	if _, err := s.reviewRepo.GetByBookAndUser(ctx, input.BookID, userID); err == nil {
		return nil, apperrors.Conflict("you have already reviewed this book")
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:        uuid.New().String(),
		BookID:    input.BookID,
		UserID:    userID,
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(input.Comment),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.refreshRating(ctx, review.BookID)

	// Publish review created event (non-blocking on failure).
	if err := s.producer.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("book_id", review.BookID),
		slog.String("user_id", userID),
	)

	created, err := s.reviewRepo.GetByID(ctx, review.ID)
	if err != nil {
		return nil, fmt.Errorf("get created review: %w", err)
	}

	return created, nil
}

// Get retrieves a single review by ID.
func (s *ReviewService) Get(ctx context.Context, id string) (*domain.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

// Update modifies an existing review. Only the review's author may update
// it.
func (s *ReviewService) Update(ctx context.Context, id, userID string, input UpdateReviewInput) (*domain.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review for update: %w", err)
	}

	if review.UserID != userID {
		return nil, apperrors.Forbidden("you can only update your own reviews")
	}

	if input.Rating != nil {
		review.Rating = *input.Rating
	}
	if input.Comment != nil {
		review.Comment = strings.TrimSpace(*input.Comment)
	}

	if err := validateReviewFields(review.Rating, review.Comment); err != nil {
		return nil, err
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	s.refreshRating(ctx, review.BookID)

	// Publish review updated event (non-blocking on failure).
	if err := s.producer.PublishReviewUpdated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.updated event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review updated",
		slog.String("review_id", review.ID),
		slog.String("book_id", review.BookID),
	)

	return review, nil
}

// Delete removes a review. The review's author may delete it, and so may an
// admin.
func (s *ReviewService) Delete(ctx context.Context, id, userID string, isAdmin bool) error {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get review for delete: %w", err)
	}

	if review.UserID != userID && !isAdmin {
		return apperrors.Forbidden("you can only delete your own reviews")
	}

	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	s.refreshRating(ctx, review.BookID)

	// Publish review deleted event (non-blocking on failure).
	if err := s.producer.PublishReviewDeleted(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.deleted event",
			slog.String("review_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", id),
		slog.String("book_id", review.BookID),
		slog.String("user_id", userID),
	)

	return nil
}

// ListByBook returns all reviews for a book, newest first.
func (s *ReviewService) ListByBook(ctx context.Context, bookID string) ([]domain.Review, error) {
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		return nil, fmt.Errorf("get book for reviews: %w", err)
	}

	reviews, err := s.reviewRepo.ListByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by book: %w", err)
	}
	return reviews, nil
}

// ListByUser returns all reviews written by the given user, newest first.
func (s *ReviewService) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	reviews, err := s.reviewRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by user: %w", err)
	}
	return reviews, nil
}

// ListAll returns every review in the system, newest first.
func (s *ReviewService) ListAll(ctx context.Context) ([]domain.Review, error) {
	reviews, err := s.reviewRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all reviews: %w", err)
	}
	return reviews, nil
}

// refreshRating recalculates the book's rating fields after a review
// mutation. A failed recalculation is logged but does not fail the mutation
// that triggered it; the next mutation on the book repairs the fields.
func (s *ReviewService) refreshRating(ctx context.Context, bookID string) {
	if err := s.aggregator.Recalculate(ctx, bookID); err != nil {
		s.logger.WarnContext(ctx, "failed to recalculate book rating",
			slog.String("book_id", bookID),
			slog.String("error", err.Error()),
		)
	}
}

// validateReviewFields checks the rating and comment rules shared by create
// and update.
func validateReviewFields(rating int, comment string) error {
	if !domain.ValidRating(rating) {
		return apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}
	if len(strings.TrimSpace(comment)) < domain.MinCommentLength {
		return apperrors.InvalidInput(fmt.Sprintf("comment must be at least %d characters", domain.MinCommentLength))
	}
	return nil
}
