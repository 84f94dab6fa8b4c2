package service

import (
	"context"

	"fast-order/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockStore is the slice of the product table the stock ledger mutates.
type StockStore interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	DecreaseStock(ctx context.Context, id uuid.UUID, amount int) (int64, error)
	IncreaseStock(ctx context.Context, id uuid.UUID, amount int) (int64, error)
}

type ProductLookup interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	UpdateOrder(ctx context.Context, order, prev *models.Order) (int64, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetOrders(ctx context.Context) ([]models.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID, status models.OrderStatus, expectedAmount int) (int64, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) (int64, error)
}

type ProductStore interface {
	ProductLookup
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByName(ctx context.Context, name string) (*models.Product, error)
	GetProducts(ctx context.Context) ([]models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) (int64, error)
	UpdateProductPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (int64, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error)
}

type UserStore interface {
	UserLookup
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) (int64, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (int64, error)
}

type RoleStore interface {
	CreateRole(ctx context.Context, role *models.Role) error
	SeedRole(ctx context.Context, role *models.Role) error
	GetRoleByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	GetRoleByName(ctx context.Context, name string) (*models.Role, error)
	GetRoles(ctx context.Context) ([]models.Role, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) (bool, error)
	GetNotificationsByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Notification, error)
}

type NotificationPublisher interface {
	PublishNotification(ctx context.Context, event *models.NotificationEvent) error
}

// IdempotencyStore binds client-supplied keys to the order they created.
type IdempotencyStore interface {
	LookupOrder(ctx context.Context, key string) (uuid.UUID, bool, error)
	BindOrder(ctx context.Context, key string, orderID uuid.UUID) error
}

// EventDeduper remembers consumed event ids.
type EventDeduper interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID string) (bool, error)
}
