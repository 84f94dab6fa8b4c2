package models

import (
	"encoding/json"
	"testing"

	"fast-order/internal/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("PENDING")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPending, status)

	status, err = ParseOrderStatus("Cancelled")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCancelled, status)

	_, err = ParseOrderStatus("shipped")
	assert.ErrorContains(t, err, "pending, finished, cancelled")
}

func TestCanTransitionTo(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusPending))
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusFinished))
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusCancelled))

	for _, terminal := range []OrderStatus{OrderStatusFinished, OrderStatusCancelled} {
		assert.True(t, terminal.IsTerminal())
		for _, next := range orderStatuses {
			assert.False(t, terminal.CanTransitionTo(next), "%s -> %s", terminal, next)
		}
	}
}

func TestTransitionToRejectsCancelAndTerminal(t *testing.T) {
	order := NewOrder(uuid.New(), uuid.New(), 2)

	err := order.TransitionTo(OrderStatusCancelled)
	assert.ErrorIs(t, err, apperror.ErrInvalidStateTransition)
	assert.Equal(t, OrderStatusPending, order.Status)

	require.NoError(t, order.TransitionTo(OrderStatusFinished))
	assert.Equal(t, OrderStatusFinished, order.Status)

	err = order.TransitionTo(OrderStatusPending)
	assert.ErrorIs(t, err, apperror.ErrInvalidStateTransition)
	assert.Equal(t, OrderStatusFinished, order.Status)
}

func TestCancelZeroesAmount(t *testing.T) {
	order := NewOrder(uuid.New(), uuid.New(), 3)

	restored, err := order.Cancel()
	require.NoError(t, err)
	assert.Equal(t, 3, restored)
	assert.Equal(t, 0, order.Amount)
	assert.Equal(t, OrderStatusCancelled, order.Status)

	restored, err = order.Cancel()
	assert.ErrorIs(t, err, apperror.ErrInvalidStateTransition)
	assert.Zero(t, restored)
}

func TestOrderStatusJSON(t *testing.T) {
	var body struct {
		Status OrderStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"FINISHED"}`), &body))
	assert.Equal(t, OrderStatusFinished, body.Status)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"lost"}`), &body))

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"finished"}`, string(out))
}

func TestOrderStatusScan(t *testing.T) {
	var status OrderStatus
	require.NoError(t, status.Scan([]byte("cancelled")))
	assert.Equal(t, OrderStatusCancelled, status)

	assert.Error(t, status.Scan(42))
}
