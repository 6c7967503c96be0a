package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"
)

var ErrProductNotFound = errors.New("product not found")

const productColumns = "id, name, description, category, price, image_url, stock, created_at"

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productColumns)

	p := &Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.Price,
		&p.ImageURL,
		&p.Stock,
		&p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

func (r *Repository) ListProducts(ctx context.Context, page, limit int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}
	offset := (page - 1) * limit

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM products ORDER BY id LIMIT $1 OFFSET $2", productColumns)
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit
	return &ProductPage{
		Products:      products,
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalProducts: total,
	}, nil
}

// SearchProducts does a case-insensitive substring match on name,
// description and category.
func (r *Repository) SearchProducts(ctx context.Context, q string, limit int) ([]*Product, error) {
	if limit < 1 {
		limit = 50
	}
	pattern := "%" + q + "%"

	query := fmt.Sprintf(`SELECT %s FROM products
		WHERE name LIKE $1 OR description LIKE $1 OR category LIKE $1
		ORDER BY id LIMIT $2`, productColumns)

	rows, err := r.db.QueryContext(ctx, query, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// SimilarProducts returns up to limit products from the same category,
// padded with products from other categories when the category runs short.
func (r *Repository) SimilarProducts(ctx context.Context, id int64, limit int) ([]*Product, error) {
	product, err := r.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM products
		WHERE category = $1 AND id != $2
		ORDER BY id LIMIT $3`, productColumns)

	rows, err := r.db.QueryContext(ctx, query, product.Category, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar products: %w", err)
	}
	defer rows.Close()

	similar, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}

	if len(similar) < limit {
		padQuery := fmt.Sprintf(`SELECT %s FROM products
			WHERE category != $1 AND id != $2
			ORDER BY id LIMIT $3`, productColumns)

		padRows, err := r.db.QueryContext(ctx, padQuery, product.Category, id, limit-len(similar))
		if err != nil {
			return nil, fmt.Errorf("failed to pad similar products: %w", err)
		}
		defer padRows.Close()

		padding, err := scanProducts(padRows)
		if err != nil {
			return nil, err
		}
		similar = append(similar, padding...)
	}

	return similar, nil
}

func (r *Repository) GetAllProducts(ctx context.Context) ([]*Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products ORDER BY id", productColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]*Product, error) {
	var products []*Product
	for rows.Next() {
		p := &Product{}
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Category,
			&p.Price,
			&p.ImageURL,
			&p.Stock,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}
