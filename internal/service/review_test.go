package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/umasankari220/BookReview/internal/domain"
	"github.com/umasankari220/BookReview/internal/repository"
	apperrors "github.com/umasankari220/BookReview/pkg/errors"
)

func newTestReviewService(reviewRepo *mockReviewRepository, bookRepo *mockBookRepository) *ReviewService {
	logger := newTestLogger()
	agg := NewRatingAggregator(bookRepo, reviewRepo, logger)
	return NewReviewService(reviewRepo, bookRepo, agg, newTestEventProducer(), logger)
}

func validReviewInput() CreateReviewInput {
	return CreateReviewInput{
		BookID:  "book-1",
		Rating:  4,
		Comment: "A very enjoyable read.",
	}
}

func TestCreateReview_Success(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	bookRepo := new(mockBookRepository)
	svc := newTestReviewService(reviewRepo, bookRepo)
	ctx := context.Background()

	bookRepo.On("GetByID", ctx, "book-1").Return(&domain.Book{ID: "book-1"}, nil)
	reviewRepo.On("GetByBookAndUser", ctx, "book-1", "user-1").Return(nil, apperrors.ErrNotFound)
	reviewRepo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)
	reviewRepo.On("AggregateByBook", ctx, "book-1").
		Return(repository.RatingStats{TotalReviews: 1, RatingSum: 4}, nil)
	bookRepo.On("UpdateRating", ctx, "book-1", 4.0, 1).Return(nil)
	reviewRepo.On("GetByID", ctx, mock.AnythingOfType("string")).
		Return(&domain.Review{ID: "rev-1", BookID: "book-1", UserID: "user-1", Rating: 4, UserName: "Alice"}, nil)

	review, err := svc.Create(ctx, "user-1", validReviewInput())

	require.NoError(t, err)
	assert.Equal(t, "rev-1", review.ID)
	assert.Equal(t, "Alice", review.UserName)

	reviewRepo.AssertExpectations(t)
	bookRepo.AssertExpectations(t)
}

func TestCreateReview_BookNotFound(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	bookRepo := new(mockBookRepository)
	svc := newTestReviewService(reviewRepo, bookRepo)
	ctx := context.Background()

	bookRepo.On("GetByID", ctx, "book-1").Return(nil, apperrors.ErrNotFound)

	review, err := svc.Create(ctx, "user-1", validReviewInput())

	assert.Nil(t, review)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	reviewRepo.AssertNotCalled(t, "Create")
}

func TestCreateReview_Duplicate(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	bookRepo := new(mockBookRepository)
	svc := newTestReviewService(reviewRepo, bookRepo)
	ctx := context.Background()

	bookRepo.On("GetByID", ctx, "book-1").Return(&domain.Book{ID: "book-1"}, nil)
	reviewRepo.On("GetByBookAndUser", ctx, "book-1", "user-1").
		Return(&domain.Review{ID: "rev-existing"}, nil)

	review, err := svc.Create(ctx, "user-1", validReviewInput())

	assert.Nil(t, review)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	reviewRepo.AssertNotCalled(t, "Create")
}

func TestCreateReview_InvalidRating(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	bookRepo := new(mockBookRepository)
	svc := newTestReviewService(reviewRepo, bookRepo)

	input := validReviewInput()
	input.Rating = 6

	review, err := svc.Create(context.Background(), "user-1", input)

	assert.Nil(t, review)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	bookRepo.AssertNotCalled(t, "GetByID")
}

func TestCreateReview_CommentTooShort(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	bookRepo := new(mockBookRepository)
	svc := newTestReviewService(reviewRepo, bookRepo)

	input := validReviewInput()
	input.Comment = "meh"

	review, err := svc.Create(context.Background(), "user-1", input)

	assert.Nil(t, review)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateReview_AggregatorFailureDoesNotFailCreate(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	bookRepo := new(mockBookRepository)
	svc := newTestReviewService(reviewRepo, bookRepo)
	ctx := context.Background()

	bookRepo.On("GetByID", ctx, "book-1").Return(&domain.Book{ID: "book-1"}, nil)
	reviewRepo.On("GetByBookAndUser", ctx, "book-1", "user-1").Return(nil, apperrors.ErrNotFound)
	reviewRepo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)
	reviewRepo.On("AggregateByBook", ctx, "book-1").
		Return(repository.RatingStats{}, fmt.Errorf("database error"))
	reviewRepo.On("GetByID", ctx, mock.AnythingOfType("string")).
		Return(&domain.Review{ID: "rev-1", BookID: "book-1", UserID: "user-1", Rating: 4}, nil)

	review, err := svc.Create(ctx, "user-1", validReviewInput())

	// The review is persisted even though the rating refresh failed.
	require.NoError(t, err)
	assert.Equal(t, "rev-1", review.ID)
	bookRepo.AssertNotCalled(t, "UpdateRating")
}

func TestUpdateReview_Success(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	bookRepo := new(mockBookRepository)
	svc := newTestReviewService(reviewRepo, bookRepo)
	ctx := context.Background()

	existing := &domain.Review{
		ID:      "rev-1",
		BookID:  "book-1",
		UserID:  "user-1",
		Rating:  4,
		Comment: "A very enjoyable read.",
	}
	reviewRepo.On("GetByID", ctx, "rev-1").Return(existing, nil)
	reviewRepo.On("Update", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)
	reviewRepo.On("AggregateByBook", ctx, "book-1").
		Return(repository.RatingStats{TotalReviews: 1, RatingSum: 2}, nil)
	bookRepo.On("UpdateRating", ctx, "book-1", 2.0, 1).Return(nil)

	review, err := svc.Update(ctx, "rev-1", "user-1", UpdateReviewInput{Rating: intPtr(2)})

	require.NoError(t, err)
	assert.Equal(t, 2, review.Rating)
	assert.Equal(t, "A very enjoyable read.", review.Comment)

	reviewRepo.AssertExpectations(t)
	bookRepo.AssertExpectations(t)
}

func TestUpdateReview_NotOwner(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	bookRepo := new(mockBookRepository)
	svc := newTestReviewService(reviewRepo, bookRepo)
	ctx := context.Background()

	existing := &domain.Review{ID: "rev-1", BookID: "book-1", UserID: "user-1", Rating: 4}
	reviewRepo.On("GetByID", ctx, "rev-1").Return(existing, nil)

	review, err := svc.Update(ctx, "rev-1", "user-2", UpdateReviewInput{Rating: intPtr(1)})

	assert.Nil(t, review)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	reviewRepo.AssertNotCalled(t, "Update")
}

func TestUpdateReview_InvalidRating(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	bookRepo := new(mockBookRepository)
	svc := newTestReviewService(reviewRepo, bookRepo)
	ctx := context.Background()

	existing := &domain.Review{
		ID:      "rev-1",
		BookID:  "book-1",
		UserID:  "user-1",
		Rating:  4,
		Comment: "A very enjoyable read.",
	}
	reviewRepo.On("GetByID", ctx, "rev-1").Return(existing, nil)

	review, err := svc.Update(ctx, "rev-1", "user-1", UpdateReviewInput{Rating: intPtr(0)})

	assert.Nil(t, review)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	reviewRepo.AssertNotCalled(t, "Update")
}

func TestDeleteReview_Owner(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	bookRepo := new(mockBookRepository)
	svc := newTestReviewService(reviewRepo, bookRepo)
	ctx := context.Background()

	existing := &domain.Review{ID: "rev-1", BookID: "book-1", UserID: "user-1", Rating: 4}
	reviewRepo.On("GetByID", ctx, "rev-1").Return(existing, nil)
	reviewRepo.On("Delete", ctx, "rev-1").Return(nil)
	reviewRepo.On("AggregateByBook", ctx, "book-1").
		Return(repository.RatingStats{TotalReviews: 0, RatingSum: 0}, nil)
	bookRepo.On("UpdateRating", ctx, "book-1", 0.0, 0).Return(nil)

	err := svc.Delete(ctx, "rev-1", "user-1", false)

	require.NoError(t, err)
	reviewRepo.AssertExpectations(t)
	bookRepo.AssertExpectations(t)
}

func TestDeleteReview_Admin(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	bookRepo := new(mockBookRepository)
	svc := newTestReviewService(reviewRepo, bookRepo)
	ctx := context.Background()

	existing := &domain.Review{ID: "rev-1", BookID: "book-1", UserID: "user-1", Rating: 4}
	reviewRepo.On("GetByID", ctx, "rev-1").Return(existing, nil)
	reviewRepo.On("Delete", ctx, "rev-1").Return(nil)
	reviewRepo.On("AggregateByBook", ctx, "book-1").
		Return(repository.RatingStats{TotalReviews: 0, RatingSum: 0}, nil)
	bookRepo.On("UpdateRating", ctx, "book-1", 0.0, 0).Return(nil)

	err := svc.Delete(ctx, "rev-1", "admin-9", true)

	require.NoError(t, err)
	reviewRepo.AssertExpectations(t)
}

func TestDeleteReview_NotOwnerNotAdmin(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	bookRepo := new(mockBookRepository)
	svc := newTestReviewService(reviewRepo, bookRepo)
	ctx := context.Background()

	existing := &domain.Review{ID: "rev-1", BookID: "book-1", UserID: "user-1", Rating: 4}
	reviewRepo.On("GetByID", ctx, "rev-1").Return(existing, nil)

	err := svc.Delete(ctx, "rev-1", "user-2", false)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	reviewRepo.AssertNotCalled(t, "Delete")
}

func TestListReviewsByBook_Success(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	bookRepo := new(mockBookRepository)
	svc := newTestReviewService(reviewRepo, bookRepo)
	ctx := context.Background()

	bookRepo.On("GetByID", ctx, "book-1").Return(&domain.Book{ID: "book-1"}, nil)
	expected := []domain.Review{
		{ID: "rev-2", BookID: "book-1", Rating: 5, UserName: "Bob"},
		{ID: "rev-1", BookID: "book-1", Rating: 3, UserName: "Alice"},
	}
	reviewRepo.On("ListByBook", ctx, "book-1").Return(expected, nil)

	reviews, err := svc.ListByBook(ctx, "book-1")

	require.NoError(t, err)
	assert.Equal(t, expected, reviews)
}

func TestListReviewsByBook_BookNotFound(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	bookRepo := new(mockBookRepository)
	svc := newTestReviewService(reviewRepo, bookRepo)
	ctx := context.Background()

	bookRepo.On("GetByID", ctx, "missing").Return(nil, apperrors.ErrNotFound)

	reviews, err := svc.ListByBook(ctx, "missing")

	assert.Nil(t, reviews)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	reviewRepo.AssertNotCalled(t, "ListByBook")
}

func TestListReviewsByUser_Success(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	bookRepo := new(mockBookRepository)
	svc := newTestReviewService(reviewRepo, bookRepo)
	ctx := context.Background()

	expected := []domain.Review{
		{ID: "rev-1", UserID: "user-1", BookTitle: "Dune", BookAuthor: "Frank Herbert"},
	}
	reviewRepo.On("ListByUser", ctx, "user-1").Return(expected, nil)

	reviews, err := svc.ListByUser(ctx, "user-1")

	require.NoError(t, err)
	assert.Equal(t, expected, reviews)
}

func TestListAllReviews_Success(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	bookRepo := new(mockBookRepository)
	svc := newTestReviewService(reviewRepo, bookRepo)
	ctx := context.Background()

	expected := []domain.Review{
		{ID: "rev-1", UserName: "Alice", UserEmail: "alice@example.com", BookTitle: "Dune"},
	}
	reviewRepo.On("ListAll", ctx).Return(expected, nil)

	reviews, err := svc.ListAll(ctx)

	require.NoError(t, err)
	assert.Equal(t, expected, reviews)
}
