package reviews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		collection: db.Collection("reviews"),
	}
}

func (m *mongoRepository) ListByProduct(ctx context.Context, productID int64, limit int) ([]*Review, error) {
	filter := bson.M{"product_id": productID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*Review
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return result, nil
}

func (m *mongoRepository) Create(ctx context.Context, review *Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return ErrInvalidRating
	}

	// One review per user per product.
	filter := bson.M{"product_id": review.ProductID, "user_id": review.UserID}
	count, err := m.collection.CountDocuments(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to check existing review: %w", err)
	}
	if count > 0 {
		return ErrAlreadyReviewed
	}

	review.CreatedAt = time.Now()
	res, err := m.collection.InsertOne(ctx, review)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}
	return nil
}

func (m *mongoRepository) MarkHelpful(ctx context.Context, reviewID string) (*Review, error) {
	oid, err := primitive.ObjectIDFromHex(reviewID)
	if err != nil {
		return nil, ErrReviewNotFound
	}

	filter := bson.M{"_id": oid}
	update := bson.M{"$inc": bson.M{"helpful": 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var review Review
	if err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to mark review helpful: %w", err)
	}
	return &review, nil
}
