package store

import (
	"context"

	"fast-order/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProduct inserts a product with its initial stock
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, name, stock, price, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	return translate(s.db.QueryRowxContext(ctx, query,
		product.ID, product.Name, product.Stock, product.Price, product.Description,
	).Scan(&product.CreatedAt, &product.UpdatedAt))
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// GetProductByName retrieves a product by its unique name
func (s *Store) GetProductByName(ctx context.Context, name string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE name = $1", name)
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// GetProducts retrieves all products
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY name")
	return products, translate(err)
}

// UpdateProduct rewrites the descriptive fields. Stock is never written here.
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) (int64, error) {
	return rowsAffected(s.db.ExecContext(ctx,
		"UPDATE products SET name = $1, price = $2, description = $3, updated_at = NOW() WHERE id = $4",
		product.Name, product.Price, product.Description, product.ID))
}

// UpdateProductPrice sets a new price
func (s *Store) UpdateProductPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (int64, error) {
	return rowsAffected(s.db.ExecContext(ctx,
		"UPDATE products SET price = $1, updated_at = NOW() WHERE id = $2",
		price, id))
}

// DeleteProduct removes a product
func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error) {
	return rowsAffected(s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id))
}

// DecreaseStock subtracts amount only while the current stock covers it.
// Zero rows affected means the product is gone or the stock is too low.
func (s *Store) DecreaseStock(ctx context.Context, id uuid.UUID, amount int) (int64, error) {
	return rowsAffected(s.db.ExecContext(ctx,
		"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1",
		amount, id))
}

// IncreaseStock adds amount back to the product's stock
func (s *Store) IncreaseStock(ctx context.Context, id uuid.UUID, amount int) (int64, error) {
	return rowsAffected(s.db.ExecContext(ctx,
		"UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2",
		amount, id))
}
