package service

import (
	"context"
	"sync"
	"testing"

	"fast-order/internal/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerDecreaseIsConditional(t *testing.T) {
	st := newMemStore()
	ledger := NewStockLedger(st, testBusiness.PersistenceTimeout)
	product := st.addProduct(3)
	ctx := context.Background()

	require.NoError(t, ledger.Decrease(ctx, product.ID, 2))
	assert.Equal(t, 1, st.stockOf(product.ID))

	err := ledger.Decrease(ctx, product.ID, 2)
	assert.ErrorIs(t, err, apperror.ErrStockUpdateFailed)
	assert.Equal(t, 1, st.stockOf(product.ID))
}

func TestLedgerRejectsNonPositiveAmounts(t *testing.T) {
	st := newMemStore()
	ledger := NewStockLedger(st, testBusiness.PersistenceTimeout)
	product := st.addProduct(3)
	ctx := context.Background()

	assert.ErrorIs(t, ledger.Decrease(ctx, product.ID, 0), apperror.ErrInvalidRequest)
	assert.ErrorIs(t, ledger.Increase(ctx, product.ID, -1), apperror.ErrInvalidRequest)
	assert.Equal(t, 3, st.stockOf(product.ID))
}

func TestLedgerUnknownProduct(t *testing.T) {
	ledger := NewStockLedger(newMemStore(), testBusiness.PersistenceTimeout)
	ctx := context.Background()

	_, err := ledger.CheckAvailability(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, ledger.Increase(ctx, uuid.New(), 1), apperror.ErrStockUpdateFailed)
}

func TestLedgerCheckAvailability(t *testing.T) {
	st := newMemStore()
	ledger := NewStockLedger(st, testBusiness.PersistenceTimeout)
	product := st.addProduct(4)
	ctx := context.Background()

	ok, err := ledger.CheckAvailability(ctx, product.ID, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.CheckAvailability(ctx, product.ID, 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLedgerStockNeverNegative(t *testing.T) {
	st := newMemStore()
	ledger := NewStockLedger(st, testBusiness.PersistenceTimeout)
	product := st.addProduct(7)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%4 == 0 {
				_ = ledger.Increase(context.Background(), product.ID, 1)
				return
			}
			_ = ledger.Decrease(context.Background(), product.ID, 2)
		}(i)
	}
	wg.Wait()

	assert.GreaterOrEqual(t, st.stockOf(product.ID), 0)
}

func TestLedgerApply(t *testing.T) {
	st := newMemStore()
	ledger := NewStockLedger(st, testBusiness.PersistenceTimeout)
	product := st.addProduct(5)
	ctx := context.Background()

	require.NoError(t, ledger.Apply(ctx, product.ID, -3))
	require.NoError(t, ledger.Apply(ctx, product.ID, 0))
	require.NoError(t, ledger.Apply(ctx, product.ID, 1))
	assert.Equal(t, 3, st.stockOf(product.ID))
}
