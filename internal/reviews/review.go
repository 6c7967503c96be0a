package reviews

import (
	"context"
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrAlreadyReviewed = errors.New("user has already reviewed this product")
	ErrReviewNotFound  = errors.New("review not found")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID int64              `bson:"product_id" json:"productId"`
	UserID    string             `bson:"user_id" json:"userId"`
	UserName  string             `bson:"user_name" json:"userName"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	Helpful   int                `bson:"helpful" json:"helpful"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Summary is the per-product review listing with its derived aggregate.
type Summary struct {
	Reviews       []*Review `json:"reviews"`
	AverageRating float64   `json:"averageRating"`
	TotalReviews  int       `json:"totalReviews"`
}

type Repository interface {
	ListByProduct(ctx context.Context, productID int64, limit int) ([]*Review, error)
	Create(ctx context.Context, review *Review) error
	MarkHelpful(ctx context.Context, reviewID string) (*Review, error)
}

// Summarize computes the average rating to one decimal place.
func Summarize(reviews []*Review) Summary {
	var total int
	for _, r := range reviews {
		total += r.Rating
	}

	var average float64
	if len(reviews) > 0 {
		average = math.Round(float64(total)/float64(len(reviews))*10) / 10
	}

	if reviews == nil {
		reviews = []*Review{}
	}
	return Summary{
		Reviews:       reviews,
		AverageRating: average,
		TotalReviews:  len(reviews),
	}
}
