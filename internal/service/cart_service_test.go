package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vibecommerce/storefront/internal/cache"
	"github.com/vibecommerce/storefront/internal/catalog"
	"github.com/vibecommerce/storefront/internal/domain"
	"github.com/vibecommerce/storefront/internal/repository"
)

type mockRepository struct {
	m     sync.RWMutex
	carts map[string]*domain.Cart
	err   error
}

func newMockRepository() *mockRepository {
	return &mockRepository{carts: make(map[string]*domain.Cart)}
}

func (m *mockRepository) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	cart, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	clone := *cart
	clone.Items = append([]domain.CartItem(nil), cart.Items...)
	return &clone, nil
}

func (m *mockRepository) UpsertCart(_ context.Context, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	clone := *cart
	clone.Items = append([]domain.CartItem(nil), cart.Items...)
	m.carts[cart.UserID] = &clone
	return nil
}

func (m *mockRepository) DeleteCart(_ context.Context, userID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.carts[userID]; !ok {
		return repository.ErrCartNotFound
	}
	delete(m.carts, userID)
	return nil
}

func (m *mockRepository) getCart(userID string) *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.carts[userID]
}

type mockCache struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockCache) Get(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.cart, nil
}

func (m *mockCache) Set(_ context.Context, _ string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = cart
	return m.err
}

func (m *mockCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	return m.err
}

func (m *mockCache) getCart() *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.cart
}

type mockCatalog struct {
	products map[int64]*catalog.Product
	err      error
}

func (m *mockCatalog) GetProduct(_ context.Context, id int64) (*catalog.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func testCatalog() *mockCatalog {
	return &mockCatalog{products: map[int64]*catalog.Product{
		1: {ID: 1, Name: "Laptop", Price: 10.0, ImageURL: "laptop.jpg", Stock: 100},
		2: {ID: 2, Name: "Mouse", Price: 5.0, ImageURL: "mouse.jpg", Stock: 3},
	}}
}

func newTestService() (*CartService, *mockRepository, *mockCache) {
	repo := newMockRepository()
	c := &mockCache{}
	return NewCartService(repo, c, testCatalog()), repo, c
}

func TestGetCart_CreatesEmptyGuestCartLazily(t *testing.T) {
	sut, repo, _ := newTestService()

	cart, err := sut.GetCart(context.Background(), domain.GuestOwner("session-1"))
	require.NoError(t, err)
	assert.Equal(t, "session-1", cart.UserID)
	assert.True(t, cart.IsGuest)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.Total)

	// The lazily created cart is persisted.
	assert.NotNil(t, repo.getCart("session-1"))
}

func TestGetCart_InvalidOwner(t *testing.T) {
	sut, _, _ := newTestService()

	_, err := sut.GetCart(context.Background(), domain.Owner{})
	assert.ErrorIs(t, err, ErrInvalidOwner)
}

func TestGetCart_CacheHit(t *testing.T) {
	repo := newMockRepository()
	repo.err = fmt.Errorf("repo should not be called")
	cached := &domain.Cart{UserID: "u1", Items: []domain.CartItem{{ID: "a", ProductID: 1, Price: 10, Quantity: 3}}, Total: 30}
	c := &mockCache{cart: cached}

	sut := NewCartService(repo, c, testCatalog())
	cart, err := sut.GetCart(context.Background(), domain.AuthenticatedOwner("u1"))
	require.NoError(t, err)
	assert.Equal(t, 30.0, cart.Total)
}

func TestGetCart_SetsCacheAfterRepoRead(t *testing.T) {
	sut, repo, c := newTestService()
	owner := domain.AuthenticatedOwner("u1")

	cart := domain.NewCart(owner)
	cart.AddItem(domain.CartItem{ID: "a", ProductID: 1, Price: 10, Quantity: 1})
	require.NoError(t, repo.UpsertCart(context.Background(), cart))

	_, err := sut.GetCart(context.Background(), owner)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return c.getCart() != nil
	}, 100*time.Millisecond, 10*time.Millisecond, "cart was not set in cache")
}

func TestAddItem_SnapshotsCatalogData(t *testing.T) {
	sut, repo, c := newTestService()
	owner := domain.GuestOwner("session-1")

	cart, err := sut.AddItem(context.Background(), owner, 1, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Laptop", cart.Items[0].Name)
	assert.Equal(t, 10.0, cart.Items[0].Price)
	assert.Equal(t, "laptop.jpg", cart.Items[0].Image)
	assert.NotEmpty(t, cart.Items[0].ID)
	assert.Equal(t, 20.0, cart.Total)

	assert.NotNil(t, repo.getCart("session-1"))

	// Verify cache was invalidated
	require.Eventually(t, func() bool {
		return c.getCart() == nil
	}, 100*time.Millisecond, 10*time.Millisecond, "cache was not invalidated")
}

func TestAddItem_RepeatedAddsAreAdditive(t *testing.T) {
	sut, _, _ := newTestService()
	owner := domain.GuestOwner("session-1")
	ctx := context.Background()

	_, err := sut.AddItem(ctx, owner, 1, 2)
	require.NoError(t, err)
	cart, err := sut.AddItem(ctx, owner, 1, 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1, "same product must stay one line item")
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 50.0, cart.Total)
}

func TestAddItem_ProductNotFound(t *testing.T) {
	sut, _, _ := newTestService()

	_, err := sut.AddItem(context.Background(), domain.GuestOwner("s"), 999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	sut, _, _ := newTestService()
	ctx := context.Background()
	owner := domain.GuestOwner("s")

	_, err := sut.AddItem(ctx, owner, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = sut.AddItem(ctx, owner, 1, MaxQuantity+1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestAddItem_InsufficientStockLeavesCartUnchanged(t *testing.T) {
	sut, _, _ := newTestService()
	owner := domain.GuestOwner("session-1")
	ctx := context.Background()

	_, err := sut.AddItem(ctx, owner, 2, 1)
	require.NoError(t, err)

	// Product 2 has stock 3; requesting 4 must fail.
	_, err = sut.AddItem(ctx, owner, 2, 4)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Verify via a subsequent read that nothing changed.
	cart, err := sut.GetCart(ctx, owner)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.Equal(t, 5.0, cart.Total)
}

func TestUpdateQuantity_Absolute(t *testing.T) {
	sut, _, _ := newTestService()
	owner := domain.GuestOwner("session-1")
	ctx := context.Background()

	cart, err := sut.AddItem(ctx, owner, 1, 4)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	cart, err = sut.UpdateQuantity(ctx, owner, itemID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 20.0, cart.Total)
}

func TestUpdateQuantity_Errors(t *testing.T) {
	sut, _, _ := newTestService()
	ctx := context.Background()
	owner := domain.GuestOwner("session-1")

	_, err := sut.UpdateQuantity(ctx, owner, "any", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = sut.UpdateQuantity(ctx, owner, "any", 1)
	assert.ErrorIs(t, err, ErrCartNotFound)

	_, err = sut.AddItem(ctx, owner, 1, 1)
	require.NoError(t, err)
	_, err = sut.UpdateQuantity(ctx, owner, "missing", 1)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRemoveItem_Idempotent(t *testing.T) {
	sut, _, _ := newTestService()
	owner := domain.GuestOwner("session-1")
	ctx := context.Background()

	cart, err := sut.AddItem(ctx, owner, 1, 1)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	first, err := sut.RemoveItem(ctx, owner, itemID)
	require.NoError(t, err)
	assert.Empty(t, first.Items)
	assert.Equal(t, 0.0, first.Total)

	// Removing the same item again is not an error and changes nothing.
	second, err := sut.RemoveItem(ctx, owner, itemID)
	require.NoError(t, err)
	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, first.Total, second.Total)
}

func TestRemoveItem_NoCart(t *testing.T) {
	sut, _, _ := newTestService()

	_, err := sut.RemoveItem(context.Background(), domain.GuestOwner("nobody"), "item")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestClear_EmptiesAndKeepsCartRecord(t *testing.T) {
	sut, repo, _ := newTestService()
	owner := domain.GuestOwner("session-1")
	ctx := context.Background()

	_, err := sut.AddItem(ctx, owner, 1, 2)
	require.NoError(t, err)

	cart, err := sut.Clear(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.Total)
	assert.NotNil(t, repo.getCart("session-1"), "cart record must survive clear")

	// Clearing an already empty cart is a no-op.
	cart, err = sut.Clear(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.Total)
}

func TestMerge_CombinesQuantitiesAndDeletesGuestCart(t *testing.T) {
	sut, repo, _ := newTestService()
	ctx := context.Background()
	guest := domain.GuestOwner("session-1")
	user := domain.AuthenticatedOwner("user-1")

	_, err := sut.AddItem(ctx, user, 1, 1)
	require.NoError(t, err)
	_, err = sut.AddItem(ctx, guest, 1, 2)
	require.NoError(t, err)
	_, err = sut.AddItem(ctx, guest, 2, 1)
	require.NoError(t, err)

	merged, err := sut.Merge(ctx, guest, user)
	require.NoError(t, err)

	require.Len(t, merged.Items, 2)
	assert.Equal(t, int64(1), merged.Items[0].ProductID)
	assert.Equal(t, 3, merged.Items[0].Quantity)
	assert.Equal(t, int64(2), merged.Items[1].ProductID)
	assert.Equal(t, 1, merged.Items[1].Quantity)
	assert.Equal(t, 35.0, merged.Total)
	assert.False(t, merged.IsGuest)

	assert.Nil(t, repo.getCart("session-1"), "guest cart must be deleted")
}

func TestMerge_Idempotent(t *testing.T) {
	sut, _, _ := newTestService()
	ctx := context.Background()
	guest := domain.GuestOwner("session-1")
	user := domain.AuthenticatedOwner("user-1")

	_, err := sut.AddItem(ctx, guest, 1, 2)
	require.NoError(t, err)

	first, err := sut.Merge(ctx, guest, user)
	require.NoError(t, err)

	// Second merge finds no guest cart and must not double-count.
	second, err := sut.Merge(ctx, guest, user)
	require.NoError(t, err)

	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, first.Total, second.Total)
	assert.False(t, second.IsGuest)
}

func TestMerge_MissingGuestCartCreatesTarget(t *testing.T) {
	sut, _, _ := newTestService()
	ctx := context.Background()

	merged, err := sut.Merge(ctx, domain.GuestOwner("never-existed"), domain.AuthenticatedOwner("user-1"))
	require.NoError(t, err)
	assert.Empty(t, merged.Items)
	assert.Equal(t, 0.0, merged.Total)
	assert.False(t, merged.IsGuest)
}

func TestMerge_MissingIDs(t *testing.T) {
	sut, _, _ := newTestService()

	_, err := sut.Merge(context.Background(), domain.Owner{}, domain.AuthenticatedOwner("u"))
	assert.ErrorIs(t, err, ErrInvalidOwner)

	_, err = sut.Merge(context.Background(), domain.Owner{ID: "s", Guest: true}, domain.Owner{})
	assert.ErrorIs(t, err, ErrInvalidOwner)
}

func TestTotalInvariant_AfterServiceMutations(t *testing.T) {
	sut, repo, _ := newTestService()
	owner := domain.GuestOwner("session-1")
	ctx := context.Background()

	check := func() {
		stored := repo.getCart(owner.ID)
		require.NotNil(t, stored)
		var want float64
		for _, it := range stored.Items {
			want += it.Price * float64(it.Quantity)
		}
		assert.InDelta(t, want, stored.Total, 1e-9)
	}

	cart, err := sut.AddItem(ctx, owner, 1, 3)
	require.NoError(t, err)
	check()

	_, err = sut.AddItem(ctx, owner, 2, 2)
	require.NoError(t, err)
	check()

	_, err = sut.UpdateQuantity(ctx, owner, cart.Items[0].ID, 1)
	require.NoError(t, err)
	check()

	_, err = sut.RemoveItem(ctx, owner, cart.Items[0].ID)
	require.NoError(t, err)
	check()

	_, err = sut.Clear(ctx, owner)
	require.NoError(t, err)
	check()
}
