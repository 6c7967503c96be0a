package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vibecommerce/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrCartNotFound = errors.New("cart not found")

type mongoRepository struct {
	collection *mongo.Collection
}

func (m mongoRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

// UpsertCart writes the whole recomputed cart document keyed by user_id.
// The unique index on user_id makes this the per-owner serialization point:
// one atomic replace per mutation, no partial writes.
func (m mongoRepository) UpsertCart(ctx context.Context, cart *domain.Cart) error {
	now := time.Now()

	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	filter := bson.M{"user_id": cart.UserID}
	update := bson.M{"$set": bson.M{
		"user_id":    cart.UserID,
		"is_guest":   cart.IsGuest,
		"items":      cart.Items,
		"total":      cart.Total,
		"created_at": cart.CreatedAt,
		"updated_at": cart.UpdatedAt,
	}}
	opts := options.Update().SetUpsert(true)

	_, err := m.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	return nil
}

func (m mongoRepository) DeleteCart(ctx context.Context, userID string) error {
	filter := bson.M{"user_id": userID}

	result, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

// createIndexes enforces one cart per owner and reaps abandoned carts.
// Both the unique owner key and the TTL are load-bearing: the upsert in
// UpsertCart is only race-free because of the unique index, and orphaned
// guest carts left behind by a crashed merge expire via the TTL.
func (m *mongoRepository) createIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func NewMongoRepository(ctx context.Context, db *mongo.Database) (CartRepository, error) {
	repo := &mongoRepository{
		collection: db.Collection("carts"),
	}
	if err := repo.createIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}
