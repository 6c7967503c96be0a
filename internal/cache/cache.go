package cache

import (
	"context"
	"errors"

	"github.com/vibecommerce/storefront/internal/domain"
)

// CartCache sits in front of the cart store, keyed by owner id. The cache is
// invalidated on every write rather than updated, so a stale entry can only
// survive until its TTL, never past the next mutation.
type CartCache interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Set(ctx context.Context, userID string, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

// ErrCacheMiss tells the caller to fall through to the cart store.
var ErrCacheMiss = errors.New("cache miss")
