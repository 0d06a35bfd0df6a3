package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bloom-shop/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access. List and
// Get make it usable as a catalog source.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (domain.Product, bool, error)
	Upsert(ctx context.Context, product domain.Product) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, category, price, description, images, in_stock, care_instructions`

// List retrieves every product ordered by id
func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	// pgtype.Map is not safe for concurrent use, so each query gets its own
	types := pgtype.NewMap()
	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows, types)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Get retrieves a product by ID using parameterized queries
func (r *productRepository) Get(ctx context.Context, id int64) (domain.Product, bool, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id), pgtype.NewMap())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, false, nil
		}
		return domain.Product{}, false, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, true, nil
}

// Upsert inserts a product or overwrites the existing row with the same id
func (r *productRepository) Upsert(ctx context.Context, product domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, category = EXCLUDED.category, price = EXCLUDED.price,
		    description = EXCLUDED.description, images = EXCLUDED.images,
		    in_stock = EXCLUDED.in_stock, care_instructions = EXCLUDED.care_instructions,
		    updated_at = NOW()
	`

	images := product.Images
	if images == nil {
		images = []string{}
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Category,
		product.Price,
		product.Description,
		images,
		product.InStock,
		product.CareInstructions,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	return nil
}

// Delete removes a product from the database using parameterized queries
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Count returns the number of stored products
func (r *productRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, types *pgtype.Map) (domain.Product, error) {
	var (
		product domain.Product
		images  []string
	)
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&product.Price,
		&product.Description,
		types.SQLScanner(&images),
		&product.InStock,
		&product.CareInstructions,
	)
	if err != nil {
		return domain.Product{}, err
	}
	if images == nil {
		images = []string{}
	}
	product.Images = images
	return product, nil
}

// Seed upserts every product so the table mirrors the given dataset
func Seed(ctx context.Context, repo ProductRepository, products []domain.Product) error {
	for _, p := range products {
		if err := repo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("failed to seed product %d: %w", p.ID, err)
		}
	}
	return nil
}
