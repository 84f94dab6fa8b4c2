package service

import (
	"context"
	"fmt"
	"time"

	"fast-order/internal/apperror"
	"fast-order/internal/models"
	"fast-order/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockLedger is the only writer of product stock. Every mutation is a single
// conditional statement in the store, never a read followed by a write.
type StockLedger struct {
	products StockStore
	timeout  time.Duration
	logger   *zap.Logger
}

// NewStockLedger creates a ledger over the product store
func NewStockLedger(products StockStore, timeout time.Duration) *StockLedger {
	return &StockLedger{
		products: products,
		timeout:  timeout,
		logger:   util.GetLogger(),
	}
}

// CheckAvailability reports whether the product currently holds at least
// requested units. The answer is advisory; Decrease is authoritative.
func (l *StockLedger) CheckAvailability(ctx context.Context, productID uuid.UUID, requested int) (bool, error) {
	product, err := persist(ctx, l.timeout, "get_product", func(ctx context.Context) (*models.Product, error) {
		return l.products.GetProductByID(ctx, productID)
	})
	if err != nil {
		return false, storeErr(err, "Product")
	}
	return product.Stock >= requested, nil
}

// Decrease removes amount units if and only if enough stock remains.
func (l *StockLedger) Decrease(ctx context.Context, productID uuid.UUID, amount int) (err error) {
	ctx, span := util.StartSpan(ctx, "StockLedger.Decrease")
	defer func() { util.EndSpan(span, err) }()

	if amount <= 0 {
		return apperror.InvalidRequest("The stock amount must be positive.")
	}

	affected, err := persist(ctx, l.timeout, "decrease_stock", func(ctx context.Context) (int64, error) {
		return l.products.DecreaseStock(ctx, productID, amount)
	})
	if err != nil {
		util.StockAdjustmentsTotal.WithLabelValues("decrease", "error").Inc()
		return storeErr(err, "Product")
	}
	if affected == 0 {
		util.StockAdjustmentsTotal.WithLabelValues("decrease", "rejected").Inc()
		return apperror.StockUpdateFailed(
			fmt.Sprintf("Could not take %d units from product %s: not enough stock or product missing.", amount, productID))
	}

	util.StockAdjustmentsTotal.WithLabelValues("decrease", "applied").Inc()
	l.logger.Debug("Stock decreased", zap.String("product_id", productID.String()), zap.Int("amount", amount))
	return nil
}

// Increase returns amount units to the product.
func (l *StockLedger) Increase(ctx context.Context, productID uuid.UUID, amount int) (err error) {
	ctx, span := util.StartSpan(ctx, "StockLedger.Increase")
	defer func() { util.EndSpan(span, err) }()

	if amount <= 0 {
		return apperror.InvalidRequest("The stock amount must be positive.")
	}

	affected, err := persist(ctx, l.timeout, "increase_stock", func(ctx context.Context) (int64, error) {
		return l.products.IncreaseStock(ctx, productID, amount)
	})
	if err != nil {
		util.StockAdjustmentsTotal.WithLabelValues("increase", "error").Inc()
		return storeErr(err, "Product")
	}
	if affected == 0 {
		util.StockAdjustmentsTotal.WithLabelValues("increase", "rejected").Inc()
		return apperror.StockUpdateFailed(fmt.Sprintf("Could not return stock to product %s: product missing.", productID))
	}

	util.StockAdjustmentsTotal.WithLabelValues("increase", "applied").Inc()
	l.logger.Debug("Stock increased", zap.String("product_id", productID.String()), zap.Int("amount", amount))
	return nil
}

// Apply moves stock by delta: negative takes units, positive returns them.
func (l *StockLedger) Apply(ctx context.Context, productID uuid.UUID, delta int) error {
	switch {
	case delta < 0:
		return l.Decrease(ctx, productID, -delta)
	case delta > 0:
		return l.Increase(ctx, productID, delta)
	default:
		return nil
	}
}
