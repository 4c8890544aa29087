package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/umasankari220/BookReview/internal/domain"
	"github.com/umasankari220/BookReview/internal/repository"
)

// RatingAggregator recomputes a book's denormalized rating fields from its
// reviews. Recalculations for the same book are serialized with a per-book
// lock so concurrent review mutations cannot interleave the read-aggregate
// and write-back steps.
type RatingAggregator struct {
	bookRepo   repository.BookRepository
	reviewRepo repository.ReviewRepository
	logger     *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRatingAggregator creates a new rating aggregator.
func NewRatingAggregator(
	bookRepo repository.BookRepository,
	reviewRepo repository.ReviewRepository,
	logger *slog.Logger,
) *RatingAggregator {
	return &RatingAggregator{
		bookRepo:   bookRepo,
		reviewRepo: reviewRepo,
		logger:     logger,
		locks:      make(map[string]*sync.Mutex),
	}
}

// Recalculate reads the review aggregate for the given book and writes the
// rounded average and review count back to the book row. A book with no
// reviews is reset to a zero average. The operation is idempotent.
func (a *RatingAggregator) Recalculate(ctx context.Context, bookID string) error {
	lock := a.bookLock(bookID)
	lock.Lock()
	defer lock.Unlock()

	stats, err := a.reviewRepo.AggregateByBook(ctx, bookID)
	if err != nil {
		return fmt.Errorf("aggregate reviews for book %s: %w", bookID, err)
	}

	avg := domain.AverageRating(stats.RatingSum, stats.TotalReviews)

	if err := a.bookRepo.UpdateRating(ctx, bookID, avg, stats.TotalReviews); err != nil {
		return fmt.Errorf("update rating for book %s: %w", bookID, err)
	}

	a.logger.DebugContext(ctx, "book rating recalculated",
		slog.String("book_id", bookID),
		slog.Float64("average_rating", avg),
		slog.Int("total_reviews", stats.TotalReviews),
	)

	return nil
}

// bookLock returns the mutex guarding recalculations for a single book,
// creating it on first use.
func (a *RatingAggregator) bookLock(bookID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	lock, ok := a.locks[bookID]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[bookID] = lock
	}
	return lock
}
