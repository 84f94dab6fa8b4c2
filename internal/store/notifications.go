package store

import (
	"context"

	"fast-order/internal/models"

	"github.com/google/uuid"
)

// CreateNotification records a consumed notification. A redelivered event
// hits the event_id constraint and is reported as not inserted.
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) (bool, error) {
	query := `
		INSERT INTO notifications (id, event_id, message, order_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING
		RETURNING created_at`

	rows, err := s.db.QueryxContext(ctx, query, n.ID, n.EventID, n.Message, n.OrderID)
	if err != nil {
		return false, translate(err)
	}
	defer rows.Close()

	if !rows.Next() {
		return false, rows.Err()
	}
	if err := rows.Scan(&n.CreatedAt); err != nil {
		return false, err
	}
	return true, rows.Err()
}

// GetNotificationsByOrderID lists the notifications recorded for an order
func (s *Store) GetNotificationsByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := s.db.SelectContext(ctx, &notifications,
		"SELECT * FROM notifications WHERE order_id = $1 ORDER BY created_at", orderID)
	return notifications, translate(err)
}
