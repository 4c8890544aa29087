package repository

import (
	"context"

	"github.com/umasankari220/BookReview/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// BookFilter holds the filter and pagination parameters for listing books.
// Search matches title or author as a case-insensitive substring; Genre
// matches genre the same way. Both compose with AND when set.
type BookFilter struct {
	Search  string
	Genre   string
	Page    int
	PerPage int
}

// BookRepository defines the interface for book persistence operations.
type BookRepository interface {
	// Create inserts a new book into the store.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book with its creator's display name.
	GetByID(ctx context.Context, id string) (*domain.Book, error)

	// List returns a page of books matching the filter, newest first, plus
	// the total number of matches.
	List(ctx context.Context, filter BookFilter) ([]domain.Book, int, error)

	// Update modifies an existing book's catalog fields. Derived rating
	// fields are not touched.
	Update(ctx context.Context, book *domain.Book) error

	// UpdateRating overwrites the book's derived rating fields.
	UpdateRating(ctx context.Context, bookID string, average float64, total int) error

	// DeleteWithReviews removes the book and all its reviews in a single
	// transaction, reviews first.
	DeleteWithReviews(ctx context.Context, id string) error
}

// RatingStats is the aggregate of a book's review set.
type RatingStats struct {
	TotalReviews int
	RatingSum    int
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create inserts a new review into the store. A duplicate (book, user)
	// pair yields a Conflict error from the store-level unique constraint.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review with its author's display name.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// GetByBookAndUser retrieves the review a user wrote for a book, if any.
	GetByBookAndUser(ctx context.Context, bookID, userID string) (*domain.Review, error)

	// Update modifies an existing review's rating and comment.
	Update(ctx context.Context, review *domain.Review) error

	// Delete removes a review from the store.
	Delete(ctx context.Context, id string) error

	// ListByBook returns all reviews for a book, newest first, with author
	// display names.
	ListByBook(ctx context.Context, bookID string) ([]domain.Review, error)

	// ListByUser returns all reviews written by a user, newest first, with
	// book title, author, and cover image.
	ListByUser(ctx context.Context, userID string) ([]domain.Review, error)

	// ListAll returns every review, newest first, with author name and email
	// plus book title and author. Used for moderation.
	ListAll(ctx context.Context) ([]domain.Review, error)

	// AggregateByBook returns the review count and rating sum for a book.
	AggregateByBook(ctx context.Context, bookID string) (RatingStats, error)
}
