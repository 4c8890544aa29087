package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umasankari220/BookReview/internal/repository"
)

func newTestAggregator(bookRepo *mockBookRepository, reviewRepo *mockReviewRepository) *RatingAggregator {
	return NewRatingAggregator(bookRepo, reviewRepo, newTestLogger())
}

func TestRatingAggregator_Recalculate(t *testing.T) {
	bookRepo := new(mockBookRepository)
	reviewRepo := new(mockReviewRepository)
	agg := newTestAggregator(bookRepo, reviewRepo)
	ctx := context.Background()

	// Two reviews rated 5 and 3 average to 4.0.
	reviewRepo.On("AggregateByBook", ctx, "book-1").
		Return(repository.RatingStats{TotalReviews: 2, RatingSum: 8}, nil)
	bookRepo.On("UpdateRating", ctx, "book-1", 4.0, 2).Return(nil)

	err := agg.Recalculate(ctx, "book-1")

	require.NoError(t, err)
	bookRepo.AssertExpectations(t)
	reviewRepo.AssertExpectations(t)
}

func TestRatingAggregator_Recalculate_Rounding(t *testing.T) {
	bookRepo := new(mockBookRepository)
	reviewRepo := new(mockReviewRepository)
	agg := newTestAggregator(bookRepo, reviewRepo)
	ctx := context.Background()

	// 11 / 3 = 3.666... rounds to 3.7.
	reviewRepo.On("AggregateByBook", ctx, "book-1").
		Return(repository.RatingStats{TotalReviews: 3, RatingSum: 11}, nil)
	bookRepo.On("UpdateRating", ctx, "book-1", 3.7, 3).Return(nil)

	err := agg.Recalculate(ctx, "book-1")

	require.NoError(t, err)
	bookRepo.AssertExpectations(t)
}

func TestRatingAggregator_Recalculate_NoReviews(t *testing.T) {
	bookRepo := new(mockBookRepository)
	reviewRepo := new(mockReviewRepository)
	agg := newTestAggregator(bookRepo, reviewRepo)
	ctx := context.Background()

	reviewRepo.On("AggregateByBook", ctx, "book-1").
		Return(repository.RatingStats{TotalReviews: 0, RatingSum: 0}, nil)
	bookRepo.On("UpdateRating", ctx, "book-1", 0.0, 0).Return(nil)

	err := agg.Recalculate(ctx, "book-1")

	require.NoError(t, err)
	bookRepo.AssertExpectations(t)
}

func TestRatingAggregator_Recalculate_Idempotent(t *testing.T) {
	bookRepo := new(mockBookRepository)
	reviewRepo := new(mockReviewRepository)
	agg := newTestAggregator(bookRepo, reviewRepo)
	ctx := context.Background()

	reviewRepo.On("AggregateByBook", ctx, "book-1").
		Return(repository.RatingStats{TotalReviews: 2, RatingSum: 8}, nil).Twice()
	bookRepo.On("UpdateRating", ctx, "book-1", 4.0, 2).Return(nil).Twice()

	require.NoError(t, agg.Recalculate(ctx, "book-1"))
	require.NoError(t, agg.Recalculate(ctx, "book-1"))

	bookRepo.AssertExpectations(t)
	reviewRepo.AssertExpectations(t)
}

func TestRatingAggregator_Recalculate_AggregateError(t *testing.T) {
	bookRepo := new(mockBookRepository)
	reviewRepo := new(mockReviewRepository)
	agg := newTestAggregator(bookRepo, reviewRepo)
	ctx := context.Background()

	reviewRepo.On("AggregateByBook", ctx, "book-1").
		Return(repository.RatingStats{}, fmt.Errorf("database error"))

	err := agg.Recalculate(ctx, "book-1")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "aggregate reviews")
	bookRepo.AssertNotCalled(t, "UpdateRating")
}

func TestRatingAggregator_Recalculate_UpdateError(t *testing.T) {
	bookRepo := new(mockBookRepository)
	reviewRepo := new(mockReviewRepository)
	agg := newTestAggregator(bookRepo, reviewRepo)
	ctx := context.Background()

	reviewRepo.On("AggregateByBook", ctx, "book-1").
		Return(repository.RatingStats{TotalReviews: 1, RatingSum: 5}, nil)
	bookRepo.On("UpdateRating", ctx, "book-1", 5.0, 1).
		Return(fmt.Errorf("database error"))

	err := agg.Recalculate(ctx, "book-1")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "update rating")
}

func TestRatingAggregator_ConcurrentRecalculate(t *testing.T) {
	bookRepo := new(mockBookRepository)
	reviewRepo := new(mockReviewRepository)
	agg := newTestAggregator(bookRepo, reviewRepo)
	ctx := context.Background()

	reviewRepo.On("AggregateByBook", ctx, "book-1").
		Return(repository.RatingStats{TotalReviews: 2, RatingSum: 8}, nil)
	reviewRepo.On("AggregateByBook", ctx, "book-2").
		Return(repository.RatingStats{TotalReviews: 1, RatingSum: 3}, nil)
	bookRepo.On("UpdateRating", ctx, "book-1", 4.0, 2).Return(nil)
	bookRepo.On("UpdateRating", ctx, "book-2", 3.0, 1).Return(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		bookID := "book-1"
		if i%2 == 0 {
			bookID = "book-2"
		}
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, agg.Recalculate(ctx, id))
		}(bookID)
	}
	wg.Wait()
}
