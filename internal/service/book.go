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
	"github.com/umasankari220/BookReview/pkg/pagination"
)

// minDescriptionLength is the minimum book description length required.
const minDescriptionLength = 10

// BookService implements the business logic for catalog operations.
type BookService struct {
	bookRepo repository.BookRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(
	bookRepo repository.BookRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *BookService {
	return &BookService{
		bookRepo: bookRepo,
		producer: producer,
		logger:   logger,
	}
}

// CreateBookInput holds the parameters for adding a book to the catalog.
type CreateBookInput struct {
	Title       string
	Author      string
	Genre       string
	Description string
	CoverImage  string
}

// UpdateBookInput holds the parameters for updating a book. Nil fields are
// left unchanged.
type UpdateBookInput struct {
	Title       *string
	Author      *string
	Genre       *string
	Description *string
	CoverImage  *string
}

// ListBooksInput holds the filter and pagination parameters for listing
// books.
type ListBooksInput struct {
	Search string
	Genre  string
	Page   int
	Limit  int
}

// BookList is a page of books with pagination metadata.
type BookList struct {
	Books       []domain.Book
	Total       int
	TotalPages  int
	CurrentPage int
}

// Create validates the input and adds a new book to the catalog.
func (s *BookService) Create(ctx context.Context, addedBy string, input CreateBookInput) (*domain.Book, error) {
	if err := validateBookFields(input.Title, input.Author, input.Genre, input.Description); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	book := &domain.Book{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(input.Title),
		Author:      strings.TrimSpace(input.Author),
		Genre:       strings.TrimSpace(input.Genre),
		Description: strings.TrimSpace(input.Description),
		CoverImage:  strings.TrimSpace(input.CoverImage),
		AddedBy:     addedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	// Publish book created event (non-blocking on failure).
	if err := s.producer.PublishBookCreated(ctx, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.created event",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "book created",
		slog.String("book_id", book.ID),
		slog.String("title", book.Title),
	)

	return book, nil
}

// Get retrieves a single book by ID.
func (s *BookService) Get(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// List returns a page of books matching the optional search and genre
// filters, newest first.
func (s *BookService) List(ctx context.Context, input ListBooksInput) (*BookList, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = pagination.DefaultPerPage
	}
	if limit > pagination.MaxPerPage {
		limit = pagination.MaxPerPage
	}

	filter := repository.BookFilter{
		Search:  strings.TrimSpace(input.Search),
		Genre:   strings.TrimSpace(input.Genre),
		Page:    page,
		PerPage: limit,
	}

	books, total, err := s.bookRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	return &BookList{
		Books:       books,
		Total:       total,
		TotalPages:  pagination.TotalPages(total, limit),
		CurrentPage: page,
	}, nil
}

// Update applies the non-nil fields of the input to an existing book.
// Updated fields are held to the same rules as Create.
func (s *BookService) Update(ctx context.Context, id string, input UpdateBookInput) (*domain.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book for update: %w", err)
	}

	if input.Title != nil {
		book.Title = strings.TrimSpace(*input.Title)
	}
	if input.Author != nil {
		book.Author = strings.TrimSpace(*input.Author)
	}
	if input.Genre != nil {
		book.Genre = strings.TrimSpace(*input.Genre)
	}
	if input.Description != nil {
		book.Description = strings.TrimSpace(*input.Description)
	}
	if input.CoverImage != nil {
		book.CoverImage = strings.TrimSpace(*input.CoverImage)
	}

	if err := validateBookFields(book.Title, book.Author, book.Genre, book.Description); err != nil {
		return nil, err
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	s.logger.InfoContext(ctx, "book updated",
		slog.String("book_id", book.ID),
	)

	return book, nil
}

// Delete removes a book and all of its reviews in a single transaction.
func (s *BookService) Delete(ctx context.Context, id string) error {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get book for delete: %w", err)
	}

	if err := s.bookRepo.DeleteWithReviews(ctx, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	// Publish book deleted event (non-blocking on failure).
	if err := s.producer.PublishBookDeleted(ctx, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.deleted event",
			slog.String("book_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "book deleted",
		slog.String("book_id", id),
		slog.String("title", book.Title),
	)

	return nil
}

// validateBookFields checks the catalog field rules shared by create and
// update.
func validateBookFields(title, author, genre, description string) error {
	if strings.TrimSpace(title) == "" {
		return apperrors.InvalidInput("title is required")
	}
	if strings.TrimSpace(author) == "" {
		return apperrors.InvalidInput("author is required")
	}
	if strings.TrimSpace(genre) == "" {
		return apperrors.InvalidInput("genre is required")
	}
	if len(strings.TrimSpace(description)) < minDescriptionLength {
		return apperrors.InvalidInput(fmt.Sprintf("description must be at least %d characters", minDescriptionLength))
	}
	return nil
}
