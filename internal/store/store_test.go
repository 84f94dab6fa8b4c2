package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fast-order/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(sql.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, translate(&pq.Error{Code: "23505", Constraint: "products_name_key"}), ErrUniqueViolation)
	assert.ErrorIs(t, translate(&pq.Error{Code: "23503"}), ErrForeignKeyViolation)

	other := errors.New("connection reset")
	assert.Equal(t, other, translate(other))
}

// newTestStore connects to TEST_DATABASE_URL, or skips.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("Integration test - requires database (set TEST_DATABASE_URL)")
	}

	store, err := NewStore(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.ApplySchema(context.Background()))
	return store
}

func seedProduct(t *testing.T, s *Store, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:          uuid.New(),
		Name:        "product-" + uuid.NewString()[:8],
		Stock:       stock,
		Price:       decimal.NewFromFloat(19.99),
		Description: "integration test product",
	}
	require.NoError(t, s.CreateProduct(context.Background(), product))
	return product
}

func seedUser(t *testing.T, s *Store) *models.User {
	t.Helper()
	ctx := context.Background()

	role := &models.Role{ID: uuid.New(), RoleName: models.RoleUser, Description: "regular customer"}
	require.NoError(t, s.SeedRole(ctx, role))
	role, err := s.GetRoleByName(ctx, models.RoleUser)
	require.NoError(t, err)

	user := &models.User{
		ID:         uuid.New(),
		Name:       "Jorge Suarez",
		Email:      uuid.NewString()[:8] + "@example.com",
		SignUpDate: time.Now().UTC(),
		TotalSpent: decimal.Zero,
		RoleID:     role.ID,
	}
	require.NoError(t, s.CreateUser(ctx, user))
	return user
}

func TestDecreaseStockIsConditional(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	product := seedProduct(t, s, 5)

	affected, err := s.DecreaseStock(ctx, product.ID, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	affected, err = s.DecreaseStock(ctx, product.ID, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	got, err := s.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)

	affected, err = s.IncreaseStock(ctx, product.ID, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	affected, err = s.IncreaseStock(ctx, uuid.New(), 3)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func TestConcurrentDecreaseNeverOversells(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	product := seedProduct(t, s, 10)

	var wg sync.WaitGroup
	var succeeded int64
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			affected, err := s.DecreaseStock(ctx, product.ID, 1)
			if err == nil && affected == 1 {
				atomic.AddInt64(&succeeded, 1)
			}
		}()
	}
	wg.Wait()

	got, err := s.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, succeeded)
	assert.Equal(t, 0, got.Stock)
}

func TestCancelOrderOnlyOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	product := seedProduct(t, s, 5)
	user := seedUser(t, s)

	order := models.NewOrder(user.ID, product.ID, 2)
	require.NoError(t, s.CreateOrder(ctx, order))

	affected, err := s.CancelOrder(ctx, order.ID, models.OrderStatusCancelled, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	affected, err = s.CancelOrder(ctx, order.ID, models.OrderStatusCancelled, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	got, err := s.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)
	assert.Equal(t, 0, got.Amount)
}

func TestUpdateOrderRequiresUnchangedRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	product := seedProduct(t, s, 5)
	user := seedUser(t, s)

	order := models.NewOrder(user.ID, product.ID, 2)
	require.NoError(t, s.CreateOrder(ctx, order))

	stale := *order
	stale.Amount = 4

	next := *order
	next.Amount = 3
	affected, err := s.UpdateOrder(ctx, &next, &stale)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	affected, err = s.UpdateOrder(ctx, &next, order)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	affected, err = s.CancelOrder(ctx, order.ID, models.OrderStatusCancelled, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected, "cancel must not match a changed amount")
}

func TestUniqueProductName(t *testing.T) {
	s := newTestStore(t)
	product := seedProduct(t, s, 1)

	dup := &models.Product{
		ID:          uuid.New(),
		Name:        product.Name,
		Price:       decimal.NewFromInt(1),
		Description: "same name again",
	}
	err := s.CreateProduct(context.Background(), dup)
	assert.ErrorIs(t, err, ErrUniqueViolation)
}

func TestCreateNotificationIgnoresRedelivery(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n := &models.Notification{ID: uuid.New(), EventID: uuid.NewString(), Message: "Order created successfully", OrderID: uuid.New()}
	inserted, err := s.CreateNotification(ctx, n)
	require.NoError(t, err)
	assert.True(t, inserted)

	again := *n
	again.ID = uuid.New()
	inserted, err = s.CreateNotification(ctx, &again)
	require.NoError(t, err)
	assert.False(t, inserted)

	list, err := s.GetNotificationsByOrderID(ctx, n.OrderID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGetOrderNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetOrderByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetUserByEmail(t *testing.T) {
	s := newTestStore(t)
	user := seedUser(t, s)

	got, err := s.GetUserByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = s.GetUserByEmail(context.Background(), "missing-"+user.Email)
	assert.ErrorIs(t, err, ErrNotFound)
}
