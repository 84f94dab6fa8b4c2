package store

import (
	"context"

	"fast-order/internal/models"

	"github.com/google/uuid"
)

// CreateOrder persists a new order
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, amount, product_id, user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		order.ID, order.Amount, order.ProductID, order.UserID, order.Status, order.CreatedAt, order.UpdatedAt)
	return translate(err)
}

// UpdateOrder overwrites the mutable columns of a pending order, provided its
// amount and product still match prev. created_at is never touched.
func (s *Store) UpdateOrder(ctx context.Context, order, prev *models.Order) (int64, error) {
	query := `
		UPDATE orders SET amount = $1, product_id = $2, user_id = $3, status = $4, updated_at = $5
		WHERE id = $6 AND status = $7 AND amount = $8 AND product_id = $9`

	return rowsAffected(s.db.ExecContext(ctx, query,
		order.Amount, order.ProductID, order.UserID, order.Status, order.UpdatedAt,
		order.ID, models.OrderStatusPending, prev.Amount, prev.ProductID))
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// GetOrders retrieves all orders, newest first
func (s *Store) GetOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders, "SELECT * FROM orders ORDER BY created_at DESC")
	return orders, translate(err)
}

// CancelOrder sets the status and zeroes the amount of a still pending order
// holding expectedAmount. Zero rows affected means the order is gone, already
// terminal, or was changed in between.
func (s *Store) CancelOrder(ctx context.Context, id uuid.UUID, status models.OrderStatus, expectedAmount int) (int64, error) {
	return rowsAffected(s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, amount = 0, updated_at = NOW() WHERE id = $2 AND status = $3 AND amount = $4",
		status, id, models.OrderStatusPending, expectedAmount))
}

// DeleteOrder removes an order row
func (s *Store) DeleteOrder(ctx context.Context, id uuid.UUID) (int64, error) {
	return rowsAffected(s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id))
}
