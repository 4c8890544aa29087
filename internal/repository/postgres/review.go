package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/umasankari220/BookReview/internal/domain"
	"github.com/umasankari220/BookReview/internal/repository"
	apperrors "github.com/umasankari220/BookReview/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	db DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(db DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a new review. The UNIQUE (book_id, user_id) constraint is
// the authoritative guard against duplicate reviews; a violation maps to a
// Conflict error.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	query := `
		INSERT INTO reviews (id, book_id, user_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		rv.ID,
		rv.BookID,
		rv.UserID,
		rv.Rating,
		rv.Comment,
		rv.CreatedAt,
		rv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("you have already reviewed this book")
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by its ID with the author's display name.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `
		SELECT r.id, r.book_id, r.user_id, r.rating, r.comment, u.name, r.created_at, r.updated_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1`

	var rv domain.Review
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rv.ID,
		&rv.BookID,
		&rv.UserID,
		&rv.Rating,
		&rv.Comment,
		&rv.UserName,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	return &rv, nil
}

// GetByBookAndUser retrieves the review a user wrote for a book, if any.
func (r *ReviewRepository) GetByBookAndUser(ctx context.Context, bookID, userID string) (*domain.Review, error) {
	query := `
		SELECT id, book_id, user_id, rating, comment, created_at, updated_at
		FROM reviews
		WHERE book_id = $1 AND user_id = $2`

	var rv domain.Review
	err := r.db.QueryRow(ctx, query, bookID, userID).Scan(
		&rv.ID,
		&rv.BookID,
		&rv.UserID,
		&rv.Rating,
		&rv.Comment,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	return &rv, nil
}

// Update modifies a review's rating and comment.
func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) error {
	rv.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE reviews
		SET rating = $1, comment = $2, updated_at = $3
		WHERE id = $4`

	ct, err := r.db.Exec(ctx, query, rv.Rating, rv.Comment, rv.UpdatedAt, rv.ID)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", rv.ID)
	}

	return nil
}

// Delete removes a review from the database.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM reviews WHERE id = $1`

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}

	return nil
}

// ListByBook returns all reviews for a book, newest first, with author names.
func (r *ReviewRepository) ListByBook(ctx context.Context, bookID string) ([]domain.Review, error) {
	query := `
		SELECT r.id, r.book_id, r.user_id, r.rating, r.comment, u.name, r.created_at, r.updated_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.book_id = $1
		ORDER BY r.created_at DESC`

	rows, err := r.db.Query(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by book: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.BookID,
			&rv.UserID,
			&rv.Rating,
			&rv.Comment,
			&rv.UserName,
			&rv.CreatedAt,
			&rv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, nil
}

// ListByUser returns all reviews written by a user, newest first, with book
// display fields.
func (r *ReviewRepository) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	query := `
		SELECT r.id, r.book_id, r.user_id, r.rating, r.comment, b.title, b.author, b.cover_image, r.created_at, r.updated_at
		FROM reviews r
		JOIN books b ON b.id = r.book_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by user: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.BookID,
			&rv.UserID,
			&rv.Rating,
			&rv.Comment,
			&rv.BookTitle,
			&rv.BookAuthor,
			&rv.BookCoverImage,
			&rv.CreatedAt,
			&rv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, nil
}

// ListAll returns every review with author and book display fields, newest
// first. Used by the moderation endpoint.
func (r *ReviewRepository) ListAll(ctx context.Context) ([]domain.Review, error) {
	query := `
		SELECT r.id, r.book_id, r.user_id, r.rating, r.comment, u.name, u.email, b.title, b.author, r.created_at, r.updated_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		JOIN books b ON b.id = r.book_id
		ORDER BY r.created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.BookID,
			&rv.UserID,
			&rv.Rating,
			&rv.Comment,
			&rv.UserName,
			&rv.UserEmail,
			&rv.BookTitle,
			&rv.BookAuthor,
			&rv.CreatedAt,
			&rv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, nil
}

// AggregateByBook returns the review count and rating sum for a book.
func (r *ReviewRepository) AggregateByBook(ctx context.Context, bookID string) (repository.RatingStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(rating), 0)
		FROM reviews
		WHERE book_id = $1`

	var stats repository.RatingStats
	err := r.db.QueryRow(ctx, query, bookID).Scan(&stats.TotalReviews, &stats.RatingSum)
	if err != nil {
		return repository.RatingStats{}, fmt.Errorf("aggregate reviews: %w", err)
	}

	return stats, nil
}
