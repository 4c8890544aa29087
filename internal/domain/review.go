package domain

import (
	"time"
)

// Rating and comment bounds enforced on review create and update.
const (
	MinRating        = 1
	MaxRating        = 5
	MinCommentLength = 5
)

// Review is a single user's review of a book. At most one review exists per
// (book, user) pair; the constraint is enforced by the store.
type Review struct {
	ID      string `json:"id"`
	BookID  string `json:"book_id"`
	UserID  string `json:"user_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`

	// Denormalized display fields, populated by list queries.
	UserName       string `json:"user_name,omitempty"`
	UserEmail      string `json:"user_email,omitempty"`
	BookTitle      string `json:"book_title,omitempty"`
	BookAuthor     string `json:"book_author,omitempty"`
	BookCoverImage string `json:"book_cover_image,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidRating reports whether r is an allowed review rating.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
