package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog. Stock is only ever changed
// through the stock ledger statements in the store.
type Product struct {
	ID          uuid.UUID       `db:"id" json:"productId"`
	Name        string          `db:"name" json:"name"`
	Stock       int             `db:"stock" json:"stock"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Description string          `db:"description" json:"description"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// Role names
const (
	RoleAdmin   = "admin"
	RoleUser    = "user"
	RoleInvited = "invited"
)

// Role represents a user role
type Role struct {
	ID          uuid.UUID `db:"id" json:"roleId"`
	RoleName    string    `db:"role_name" json:"roleName"`
	Description string    `db:"description" json:"description"`
}

// User represents a registered customer
type User struct {
	ID         uuid.UUID       `db:"id" json:"userId"`
	Name       string          `db:"name" json:"name"`
	Email      string          `db:"email" json:"email"`
	SignUpDate time.Time       `db:"sign_up_date" json:"signUpDate"`
	TotalSpent decimal.Decimal `db:"total_spent" json:"totalSpent"`
	RoleID     uuid.UUID       `db:"role_id" json:"roleId"`
}

// Order represents a single-product customer order
type Order struct {
	ID        uuid.UUID   `db:"id" json:"orderId"`
	Amount    int         `db:"amount" json:"amount"`
	ProductID uuid.UUID   `db:"product_id" json:"productId"`
	UserID    uuid.UUID   `db:"user_id" json:"userId"`
	Status    OrderStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `db:"updated_at" json:"updatedAt"`
}

// NewOrder builds a pending order bound to the given user and product.
func NewOrder(userID, productID uuid.UUID, amount int) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:        uuid.New(),
		Amount:    amount,
		ProductID: productID,
		UserID:    userID,
		Status:    OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Notification is the consumer-side record of a NotificationEvent.
type Notification struct {
	ID        uuid.UUID `db:"id" json:"notificationId"`
	EventID   string    `db:"event_id" json:"eventId"`
	Message   string    `db:"message" json:"message"`
	OrderID   uuid.UUID `db:"order_id" json:"orderId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
