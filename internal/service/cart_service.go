package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/vibecommerce/storefront/internal/cache"
	"github.com/vibecommerce/storefront/internal/catalog"
	"github.com/vibecommerce/storefront/internal/domain"
	"github.com/vibecommerce/storefront/internal/repository"
	"golang.org/x/sync/singleflight"
)

// MaxQuantity caps the quantity accepted per add or update request.
const MaxQuantity = 1000

// CatalogReader resolves a product reference to its current catalog snapshot.
type CatalogReader interface {
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
}

type CartService struct {
	repo    repository.CartRepository
	cache   cache.CartCache
	catalog CatalogReader
	sfg     singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, catalog CatalogReader) *CartService {
	return &CartService{
		repo:    repo,
		cache:   cache,
		catalog: catalog,
	}
}

// GetCart returns the owner's cart, creating an empty one lazily when the
// owner has none yet.
func (s *CartService) GetCart(ctx context.Context, owner domain.Owner) (*domain.Cart, error) {
	if !owner.Valid() {
		return nil, ErrInvalidOwner
	}

	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(owner.ID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, owner.ID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, owner.ID)
		if errGet != nil && errors.Is(errGet, repository.ErrCartNotFound) {
			cart = domain.NewCart(owner)
			if errUpsert := s.repo.UpsertCart(ctx, cart); errUpsert != nil {
				return nil, errUpsert
			}
			return cart, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		// set cache
		go func() {
			errSet := s.cache.Set(context.Background(), owner.ID, cart)
			if errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem validates the product against the catalog, snapshots its
// name/price/image and merges it into the owner's cart. Stock is checked
// against the requested quantity alone, not against what the cart already
// holds.
func (s *CartService) AddItem(ctx context.Context, owner domain.Owner, productID int64, quantity int) (*domain.Cart, error) {
	if !owner.Valid() {
		return nil, ErrInvalidOwner
	}
	if quantity < 1 || quantity > MaxQuantity {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if product.Stock < quantity {
		return nil, ErrInsufficientStock
	}

	cart, err := s.loadOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}

	cart.AddItem(domain.CartItem{
		ID:        uuid.NewString(),
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  quantity,
		Image:     product.ImageURL,
		AddedAt:   time.Now(),
	})

	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		return nil, err
	}

	s.invalidateCache(owner.ID)
	return cart, nil
}

// UpdateQuantity sets a line item's quantity absolutely.
func (s *CartService) UpdateQuantity(ctx context.Context, owner domain.Owner, itemID string, quantity int) (*domain.Cart, error) {
	if !owner.Valid() {
		return nil, ErrInvalidOwner
	}
	if quantity < 1 || quantity > MaxQuantity {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	if !cart.SetItemQuantity(itemID, quantity) {
		return nil, ErrItemNotFound
	}

	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		return nil, err
	}

	s.invalidateCache(owner.ID)
	return cart, nil
}

// RemoveItem drops a line item. A missing item id is a silent no-op; only a
// missing cart is an error.
func (s *CartService) RemoveItem(ctx context.Context, owner domain.Owner, itemID string) (*domain.Cart, error) {
	if !owner.Valid() {
		return nil, ErrInvalidOwner
	}

	cart, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	cart.RemoveItem(itemID)

	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		return nil, err
	}

	s.invalidateCache(owner.ID)
	return cart, nil
}

// Clear empties the owner's cart. The cart record itself survives; checkout
// relies on that.
func (s *CartService) Clear(ctx context.Context, owner domain.Owner) (*domain.Cart, error) {
	if !owner.Valid() {
		return nil, ErrInvalidOwner
	}

	cart, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	cart.Clear()

	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		return nil, err
	}

	s.invalidateCache(owner.ID)
	return cart, nil
}

// Merge folds the guest cart into the target owner's cart after login and
// deletes the guest cart record. When the guest cart no longer exists the
// call degenerates to returning the target cart with its guest flag cleared,
// which makes repeated merges of the same pair harmless.
//
// The merged target is persisted before the guest cart is deleted. A crash
// between the two writes leaves the guest cart behind; a retried merge then
// double-counts matched quantities. Fixing that needs cross-document
// transactions in the store, see DESIGN.md.
func (s *CartService) Merge(ctx context.Context, guestOwner, targetOwner domain.Owner) (*domain.Cart, error) {
	if !guestOwner.Valid() || !targetOwner.Valid() {
		return nil, ErrInvalidOwner
	}

	target, err := s.loadOrCreate(ctx, targetOwner)
	if err != nil {
		return nil, err
	}

	guest, err := s.repo.GetCart(ctx, guestOwner.ID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		return nil, err
	}

	if guest == nil {
		guest = domain.NewCart(guestOwner)
	}
	target.MergeFrom(guest)

	if err := s.repo.UpsertCart(ctx, target); err != nil {
		return nil, err
	}

	if errDel := s.repo.DeleteCart(ctx, guestOwner.ID); errDel != nil && !errors.Is(errDel, repository.ErrCartNotFound) {
		log.Printf("failed to delete guest cart %s after merge: %v", guestOwner.ID, errDel)
	}

	s.invalidateCache(guestOwner.ID)
	s.invalidateCache(targetOwner.ID)
	return target, nil
}

func (s *CartService) load(ctx context.Context, owner domain.Owner) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, owner.ID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return cart, nil
}

func (s *CartService) loadOrCreate(ctx context.Context, owner domain.Owner) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, owner.ID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return domain.NewCart(owner), nil
		}
		return nil, err
	}
	return cart, nil
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
