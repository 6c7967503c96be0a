package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		collection: db.Collection("wishlists"),
	}
}

func (m *mongoRepository) GetOrCreate(ctx context.Context, userID string) (*Wishlist, error) {
	var wishlist Wishlist

	filter := bson.M{"user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&wishlist)
	if err == nil {
		return &wishlist, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}

	now := time.Now()
	created := &Wishlist{
		UserID:    userID,
		Items:     []Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.upsert(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (m *mongoRepository) AddItem(ctx context.Context, userID string, item Item) (*Wishlist, error) {
	wishlist, err := m.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, existing := range wishlist.Items {
		if existing.ProductID == item.ProductID {
			return nil, ErrDuplicateItem
		}
	}

	item.AddedAt = time.Now()
	wishlist.Items = append(wishlist.Items, item)

	if err := m.upsert(ctx, wishlist); err != nil {
		return nil, err
	}
	return wishlist, nil
}

func (m *mongoRepository) RemoveItem(ctx context.Context, userID, itemID string) (*Wishlist, error) {
	var wishlist Wishlist

	filter := bson.M{"user_id": userID}
	if err := m.collection.FindOne(ctx, filter).Decode(&wishlist); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrWishlistNotFound
		}
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}

	// Unmatched item ids leave the list unchanged, same as the cart.
	for i := range wishlist.Items {
		if wishlist.Items[i].ID == itemID {
			wishlist.Items = append(wishlist.Items[:i], wishlist.Items[i+1:]...)
			break
		}
	}

	if err := m.upsert(ctx, &wishlist); err != nil {
		return nil, err
	}
	return &wishlist, nil
}

func (m *mongoRepository) upsert(ctx context.Context, wishlist *Wishlist) error {
	wishlist.UpdatedAt = time.Now()

	filter := bson.M{"user_id": wishlist.UserID}
	update := bson.M{"$set": bson.M{
		"user_id":    wishlist.UserID,
		"items":      wishlist.Items,
		"created_at": wishlist.CreatedAt,
		"updated_at": wishlist.UpdatedAt,
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert wishlist: %w", err)
	}
	return nil
}
