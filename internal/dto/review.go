package dto

import (
	"time"

	"github.com/craftmart/storefront/internal/entity"
)

// ReviewResponse represents a review as exposed over HTTP.
type ReviewResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromReview converts a review entity.
func FromReview(review *entity.Review) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID.Hex(),
		Name:      review.Name,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
}

// FromReviews converts a list of review entities, preserving order.
func FromReviews(reviews []entity.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, FromReview(&reviews[i]))
	}
	return out
}
