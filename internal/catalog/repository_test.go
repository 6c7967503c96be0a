package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T) *Repository {
	repo, err := NewRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	_, err = repo.db.Exec(`CREATE TABLE products (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		price REAL NOT NULL,
		image_url TEXT NOT NULL DEFAULT '',
		stock INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)

	seed := []struct {
		id       int64
		name     string
		desc     string
		category string
		price    float64
		stock    int
	}{
		{1, "Laptop Pro", "A powerful laptop", "Electronics", 1299.99, 10},
		{2, "Wireless Mouse", "Ergonomic wireless mouse", "Electronics", 29.99, 50},
		{3, "Running Shoes", "Lightweight running shoes", "Sports", 89.99, 25},
		{4, "Yoga Mat", "Non-slip yoga mat", "Sports", 24.99, 40},
		{5, "Coffee Maker", "Drip coffee maker", "Home", 59.99, 15},
	}
	for _, p := range seed {
		_, err := repo.db.Exec(
			"INSERT INTO products (id, name, description, category, price, stock) VALUES ($1, $2, $3, $4, $5, $6)",
			p.id, p.name, p.desc, p.category, p.price, p.stock)
		require.NoError(t, err)
	}

	return repo
}

func TestGetProduct(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	p, err := repo.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Laptop Pro", p.Name)
	assert.Equal(t, 1299.99, p.Price)
	assert.Equal(t, 10, p.Stock)
}

func TestGetProduct_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.GetProduct(context.Background(), 999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestListProducts_Pagination(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	page, err := repo.ListProducts(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Products, 2)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 5, page.TotalProducts)

	last, err := repo.ListProducts(ctx, 3, 2)
	require.NoError(t, err)
	assert.Len(t, last.Products, 1)
}

func TestSearchProducts(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	byName, err := repo.SearchProducts(ctx, "Laptop", 50)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, int64(1), byName[0].ID)

	byCategory, err := repo.SearchProducts(ctx, "Sports", 50)
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	none, err := repo.SearchProducts(ctx, "nonexistent", 50)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSimilarProducts_PadsAcrossCategories(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	similar, err := repo.SimilarProducts(ctx, 3, 4)
	require.NoError(t, err)

	// One other product in Sports, padded with three from elsewhere.
	require.Len(t, similar, 4)
	assert.Equal(t, "Sports", similar[0].Category)
	for _, p := range similar {
		assert.NotEqual(t, int64(3), p.ID)
	}
}
