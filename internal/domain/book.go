package domain

import (
	"math"
	"time"
)

// Book represents a catalog entry. AverageRating and TotalReviews are derived
// from the book's review set; they are written only by the rating aggregator
// and never accepted from clients.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Genre         string    `json:"genre"`
	Description   string    `json:"description"`
	CoverImage    string    `json:"cover_image,omitempty"`
	AddedBy       string    `json:"added_by"`
	AddedByName   string    `json:"added_by_name,omitempty"`
	AverageRating float64   `json:"average_rating"`
	TotalReviews  int       `json:"total_reviews"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AverageRating computes the one-decimal average for count reviews totalling
// sum, rounding half-up. Returns 0 when there are no reviews.
func AverageRating(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(count)*10) / 10
}
