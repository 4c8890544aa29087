package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/umasankari220/BookReview/internal/domain"
	"github.com/umasankari220/BookReview/internal/repository"
	apperrors "github.com/umasankari220/BookReview/pkg/errors"
)

// BookRepository implements repository.BookRepository using PostgreSQL.
type BookRepository struct {
	db DBTX
}

// NewBookRepository creates a new PostgreSQL-backed book repository.
func NewBookRepository(db DBTX) *BookRepository {
	return &BookRepository{db: db}
}

// Create inserts a new book into the database. Derived rating fields start
// at zero.
func (r *BookRepository) Create(ctx context.Context, b *domain.Book) error {
	query := `
		INSERT INTO books (id, title, author, genre, description, cover_image, added_by, average_rating, total_reviews, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		b.ID,
		b.Title,
		b.Author,
		b.Genre,
		b.Description,
		b.CoverImage,
		b.AddedBy,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}

	return nil
}

// GetByID retrieves a book by its ID with the creator's display name.
func (r *BookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	query := `
		SELECT b.id, b.title, b.author, b.genre, b.description, b.cover_image, b.added_by, u.name,
		       b.average_rating, b.total_reviews, b.created_at, b.updated_at
		FROM books b
		JOIN users u ON u.id = b.added_by
		WHERE b.id = $1`

	var b domain.Book
	err := r.db.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Genre,
		&b.Description,
		&b.CoverImage,
		&b.AddedBy,
		&b.AddedByName,
		&b.AverageRating,
		&b.TotalReviews,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan book: %w", err)
	}

	return &b, nil
}

// List returns a page of books matching the filter, newest first, plus the
// total match count.
func (r *BookRepository) List(ctx context.Context, filter repository.BookFilter) ([]domain.Book, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(b.title ILIKE $%d OR b.author ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	if filter.Genre != "" {
		conditions = append(conditions, fmt.Sprintf("b.genre ILIKE $%d", argIndex))
		args = append(args, "%"+filter.Genre+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT b.id, b.title, b.author, b.genre, b.description, b.cover_image, b.added_by, u.name,
		       b.average_rating, b.total_reviews, b.created_at, b.updated_at,
		       count(*) OVER() AS total_count
		FROM books b
		JOIN users u ON u.id = b.added_by
		%s
		ORDER BY b.created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 10
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var (
		books      []domain.Book
		totalCount int
	)

	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(
			&b.ID,
			&b.Title,
			&b.Author,
			&b.Genre,
			&b.Description,
			&b.CoverImage,
			&b.AddedBy,
			&b.AddedByName,
			&b.AverageRating,
			&b.TotalReviews,
			&b.CreatedAt,
			&b.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate book rows: %w", err)
	}

	if books == nil {
		books = []domain.Book{}
	}

	return books, totalCount, nil
}

// Update modifies a book's catalog fields. The derived rating fields are
// deliberately left out; only UpdateRating writes them.
func (r *BookRepository) Update(ctx context.Context, b *domain.Book) error {
	b.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE books
		SET title = $1, author = $2, genre = $3, description = $4, cover_image = $5, updated_at = $6
		WHERE id = $7`

	ct, err := r.db.Exec(ctx, query,
		b.Title,
		b.Author,
		b.Genre,
		b.Description,
		b.CoverImage,
		b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("book", b.ID)
	}

	return nil
}

// UpdateRating overwrites the book's derived rating fields unconditionally.
func (r *BookRepository) UpdateRating(ctx context.Context, bookID string, average float64, total int) error {
	query := `
		UPDATE books
		SET average_rating = $1, total_reviews = $2, updated_at = $3
		WHERE id = $4`

	ct, err := r.db.Exec(ctx, query, average, total, time.Now().UTC(), bookID)
	if err != nil {
		return fmt.Errorf("update book rating: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("book", bookID)
	}

	return nil
}

// DeleteWithReviews removes the book and all its reviews in one transaction.
// Reviews are deleted before the book so a crash can never leave reviews
// referencing a missing book.
func (r *BookRepository) DeleteWithReviews(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM reviews WHERE book_id = $1`, id); err != nil {
		return fmt.Errorf("delete book reviews: %w", err)
	}

	ct, err := tx.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("book", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
