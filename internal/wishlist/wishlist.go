package wishlist

import (
	"context"
	"errors"
	"time"
)

var (
	ErrWishlistNotFound = errors.New("wishlist not found")
	ErrDuplicateItem    = errors.New("product already in wishlist")
)

type Wishlist struct {
	ID        string    `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    string    `bson:"user_id" json:"userId"`
	Items     []Item    `bson:"items" json:"items"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Item carries the same add-time snapshot a cart line does, minus quantity.
type Item struct {
	ID        string    `bson:"item_id" json:"id"`
	ProductID int64     `bson:"product_id" json:"productId"`
	Name      string    `bson:"name" json:"name"`
	Price     float64   `bson:"price" json:"price"`
	Image     string    `bson:"image,omitempty" json:"image,omitempty"`
	AddedAt   time.Time `bson:"added_at" json:"addedAt"`
}

type Repository interface {
	GetOrCreate(ctx context.Context, userID string) (*Wishlist, error)
	AddItem(ctx context.Context, userID string, item Item) (*Wishlist, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*Wishlist, error)
}
