package service

import (
	"context"
	"sync"
	"time"

	"fast-order/config"
	"fast-order/internal/apperror"
	"fast-order/internal/models"
	"fast-order/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CancelledMessage is returned by CancelOrder on success.
const CancelledMessage = "The order was successfully cancelled."

// OrderService keeps orders and product stock consistent with each other.
type OrderService struct {
	orders      OrderStore
	users       UserLookup
	products    ProductLookup
	ledger      *StockLedger
	publisher   NotificationPublisher
	idempotency IdempotencyStore

	timeout        time.Duration
	publishTimeout time.Duration
	logger         *zap.Logger

	inflight sync.WaitGroup
}

// NewOrderService creates a new order service. idempotency may be nil.
func NewOrderService(
	orders OrderStore,
	users UserLookup,
	products ProductLookup,
	ledger *StockLedger,
	publisher NotificationPublisher,
	idempotency IdempotencyStore,
	cfg config.BusinessConfig,
) *OrderService {
	return &OrderService{
		orders:         orders,
		users:          users,
		products:       products,
		ledger:         ledger,
		publisher:      publisher,
		idempotency:    idempotency,
		timeout:        cfg.PersistenceTimeout,
		publishTimeout: cfg.PublishTimeout,
		logger:         util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	UserID         uuid.UUID `json:"userId" binding:"required"`
	ProductID      uuid.UUID `json:"productId" binding:"required"`
	Amount         int       `json:"amount" binding:"required,min=1"`
	IdempotencyKey string    `json:"-"`
}

// UpdateOrderRequest replaces the mutable fields of an order
type UpdateOrderRequest struct {
	UserID    uuid.UUID          `json:"userId" binding:"required"`
	ProductID uuid.UUID          `json:"productId" binding:"required"`
	Amount    int                `json:"amount" binding:"required,min=1"`
	Status    models.OrderStatus `json:"status" binding:"required"`
}

// CreateOrder places a pending order and takes its amount from stock.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (order *models.Order, err error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer func() {
		util.EndSpan(span, err)
		s.countFailure("create", err)
	}()

	if req.Amount < 1 {
		return nil, apperror.InvalidRequest("The order amount must be at least 1.")
	}

	if existing, ok := s.replay(ctx, req.IdempotencyKey); ok {
		return existing, nil
	}

	user, err := s.findUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	product, err := s.findProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	available, err := s.ledger.CheckAvailability(ctx, product.ID, req.Amount)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, apperror.InsufficientStock()
	}

	order = models.NewOrder(user.ID, product.ID, req.Amount)
	if err := persistExec(ctx, s.timeout, "create_order", func(ctx context.Context) error {
		return s.orders.CreateOrder(ctx, order)
	}); err != nil {
		return nil, storeErr(err, "Order")
	}

	if err := s.ledger.Decrease(ctx, product.ID, order.Amount); err != nil {
		s.discard(ctx, order.ID)
		return nil, err
	}

	s.bind(ctx, req.IdempotencyKey, order.ID)

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("product_id", product.ID.String()),
		zap.Int("amount", order.Amount))

	s.notify(ctx, models.MessageOrderCreated, order.ID)
	return order, nil
}

// UpdateOrder replaces amount, product, user and status of a pending order,
// moving stock by the difference.
func (s *OrderService) UpdateOrder(ctx context.Context, id uuid.UUID, req *UpdateOrderRequest) (order *models.Order, err error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrder")
	defer func() {
		util.EndSpan(span, err)
		s.countFailure("update", err)
	}()

	if req.Amount < 1 {
		return nil, apperror.InvalidRequest("The order amount must be at least 1.")
	}

	order, err = s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := s.findUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	product, err := s.findProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	prev := *order
	if err := order.TransitionTo(req.Status); err != nil {
		return nil, err
	}

	applied, err := s.reconcileStock(ctx, &prev, product.ID, req.Amount)
	if err != nil {
		return nil, err
	}

	order.Amount = req.Amount
	order.ProductID = product.ID
	order.UserID = user.ID
	order.UpdatedAt = time.Now().UTC()

	affected, err := persist(ctx, s.timeout, "update_order", func(ctx context.Context) (int64, error) {
		return s.orders.UpdateOrder(ctx, order, &prev)
	})
	if err != nil {
		s.revert(ctx, applied)
		return nil, storeErr(err, "Order")
	}
	if affected == 0 {
		s.revert(ctx, applied)
		return nil, s.staleOrder(ctx, id, req.Status)
	}

	util.OrdersUpdatedTotal.Inc()
	s.logger.Info("Order updated",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
		zap.Int("amount", order.Amount))

	s.notify(ctx, models.MessageOrderUpdated, order.ID)
	return order, nil
}

// CancelOrder cancels a pending order and returns its amount to stock.
func (s *OrderService) CancelOrder(ctx context.Context, id uuid.UUID) (msg string, err error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CancelOrder")
	defer func() {
		util.EndSpan(span, err)
		s.countFailure("cancel", err)
	}()

	order, err := s.findOrder(ctx, id)
	if err != nil {
		return "", err
	}
	product, err := s.findProduct(ctx, order.ProductID)
	if err != nil {
		return "", err
	}

	originalAmount, err := order.Cancel()
	if err != nil {
		return "", apperror.CancelFailed(err)
	}

	affected, err := persist(ctx, s.timeout, "cancel_order", func(ctx context.Context) (int64, error) {
		return s.orders.CancelOrder(ctx, order.ID, order.Status, originalAmount)
	})
	if err != nil {
		return "", storeErr(err, "Order")
	}
	if affected == 0 {
		return "", apperror.CancelFailed(nil)
	}

	// The row is already cancelled at this point.
	if err := s.ledger.Increase(ctx, product.ID, originalAmount); err != nil {
		s.logger.Error("Order cancelled but stock not restored",
			zap.String("order_id", order.ID.String()),
			zap.String("product_id", product.ID.String()),
			zap.Int("amount", originalAmount),
			zap.Error(err))
		return "", err
	}

	util.OrdersCancelledTotal.Inc()
	s.logger.Info("Order cancelled",
		zap.String("order_id", order.ID.String()),
		zap.Int("restored", originalAmount))

	s.notify(ctx, models.MessageOrderCancelled, order.ID)
	return CancelledMessage, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.findOrder(ctx, id)
}

// ListOrders returns every order, newest first
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := persist(ctx, s.timeout, "list_orders", s.orders.GetOrders)
	if err != nil {
		return nil, storeErr(err, "Order")
	}
	return orders, nil
}

// Wait blocks until every in-flight notification hand-off has finished.
func (s *OrderService) Wait() {
	s.inflight.Wait()
}

type stockAdjustment struct {
	productID uuid.UUID
	delta     int
}

// reconcileStock moves stock from prev's holding to the new product and
// amount, decreases first. Returns what was applied so it can be reverted.
func (s *OrderService) reconcileStock(ctx context.Context, prev *models.Order, productID uuid.UUID, amount int) ([]stockAdjustment, error) {
	var plan []stockAdjustment
	if prev.ProductID == productID {
		if delta := amount - prev.Amount; delta != 0 {
			plan = append(plan, stockAdjustment{productID: productID, delta: -delta})
		}
	} else {
		plan = append(plan,
			stockAdjustment{productID: productID, delta: -amount},
			stockAdjustment{productID: prev.ProductID, delta: prev.Amount})
	}

	applied := make([]stockAdjustment, 0, len(plan))
	for _, adj := range plan {
		if adj.delta < 0 {
			available, err := s.ledger.CheckAvailability(ctx, adj.productID, -adj.delta)
			if err != nil {
				s.revert(ctx, applied)
				return nil, err
			}
			if !available {
				s.revert(ctx, applied)
				return nil, apperror.InsufficientStock()
			}
		}
		if err := s.ledger.Apply(ctx, adj.productID, adj.delta); err != nil {
			s.revert(ctx, applied)
			return nil, err
		}
		applied = append(applied, adj)
	}
	return applied, nil
}

// revert undoes applied adjustments in reverse order. Failures are logged.
func (s *OrderService) revert(ctx context.Context, applied []stockAdjustment) {
	for i := len(applied) - 1; i >= 0; i-- {
		adj := applied[i]
		if err := s.ledger.Apply(ctx, adj.productID, -adj.delta); err != nil {
			s.logger.Error("Failed to revert stock adjustment",
				zap.String("product_id", adj.productID.String()),
				zap.Int("delta", -adj.delta),
				zap.Error(err))
		}
	}
}

// discard deletes an order whose stock could not be taken.
func (s *OrderService) discard(ctx context.Context, id uuid.UUID) {
	_, err := persist(ctx, s.timeout, "delete_order", func(ctx context.Context) (int64, error) {
		return s.orders.DeleteOrder(ctx, id)
	})
	if err != nil {
		s.logger.Error("Failed to discard order after stock decrease failed",
			zap.String("order_id", id.String()),
			zap.Error(err))
	}
}

// staleOrder explains why a guarded update matched no row.
func (s *OrderService) staleOrder(ctx context.Context, id uuid.UUID, requested models.OrderStatus) error {
	current, err := s.findOrder(ctx, id)
	if err != nil {
		return err
	}
	return apperror.InvalidStateTransition(string(current.Status), string(requested))
}

func (s *OrderService) replay(ctx context.Context, key string) (*models.Order, bool) {
	if key == "" || s.idempotency == nil {
		return nil, false
	}

	orderID, found, err := s.idempotency.LookupOrder(ctx, key)
	if err != nil {
		s.logger.Warn("Idempotency lookup failed, processing request", zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}

	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		s.logger.Warn("Idempotency key bound to unreadable order",
			zap.String("idempotency_key", key),
			zap.Error(err))
		return nil, false
	}

	s.logger.Info("Duplicate order request detected",
		zap.String("idempotency_key", key),
		zap.String("order_id", order.ID.String()))
	return order, true
}

func (s *OrderService) bind(ctx context.Context, key string, orderID uuid.UUID) {
	if key == "" || s.idempotency == nil {
		return
	}
	if err := s.idempotency.BindOrder(ctx, key, orderID); err != nil {
		s.logger.Warn("Failed to bind idempotency key", zap.String("idempotency_key", key), zap.Error(err))
	}
}

// notify hands the event to the publisher without blocking the caller. The
// hand-off outlives the request but not PublishTimeout.
func (s *OrderService) notify(ctx context.Context, message string, orderID uuid.UUID) {
	if s.publisher == nil {
		return
	}
	event := models.NewNotificationEvent(message, orderID)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		timeout := s.publishTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		if err := s.publisher.PublishNotification(ctx, event); err != nil {
			util.NotificationsPublishedTotal.WithLabelValues("failed").Inc()
			s.logger.Error("Failed to publish notification",
				zap.String("event_id", event.EventID),
				zap.String("order_id", orderID.String()),
				zap.Error(err))
			return
		}
		util.NotificationsPublishedTotal.WithLabelValues("sent").Inc()
	}()
}

func (s *OrderService) findOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := persist(ctx, s.timeout, "get_order", func(ctx context.Context) (*models.Order, error) {
		return s.orders.GetOrderByID(ctx, id)
	})
	if err != nil {
		return nil, storeErr(err, "Order")
	}
	return order, nil
}

func (s *OrderService) findUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := persist(ctx, s.timeout, "get_user", func(ctx context.Context) (*models.User, error) {
		return s.users.GetUserByID(ctx, id)
	})
	if err != nil {
		return nil, storeErr(err, "User")
	}
	return user, nil
}

func (s *OrderService) findProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := persist(ctx, s.timeout, "get_product", func(ctx context.Context) (*models.Product, error) {
		return s.products.GetProductByID(ctx, id)
	})
	if err != nil {
		return nil, storeErr(err, "Product")
	}
	return product, nil
}

func (s *OrderService) countFailure(operation string, err error) {
	if err == nil {
		return
	}
	appErr := apperror.From(err)
	reason := string(appErr.Kind)
	if appErr.Reason != apperror.ReasonNone {
		reason = string(appErr.Reason)
	}
	util.OrdersFailedTotal.WithLabelValues(operation, reason).Inc()
}
