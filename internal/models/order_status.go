package models

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"fast-order/internal/apperror"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// Order statuses
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFinished  OrderStatus = "finished"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var orderStatuses = []OrderStatus{OrderStatusPending, OrderStatusFinished, OrderStatusCancelled}

// ParseOrderStatus accepts any casing of a known status.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, status := range orderStatuses {
		if strings.EqualFold(string(status), value) {
			return status, nil
		}
	}
	valid := make([]string, len(orderStatuses))
	for i, status := range orderStatuses {
		valid[i] = string(status)
	}
	return "", fmt.Errorf("invalid order status %q, valid status: %s", value, strings.Join(valid, ", "))
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFinished || s == OrderStatusCancelled
}

// CanTransitionTo reports whether next is reachable from s. Staying in
// PENDING is allowed; nothing leaves a terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s != OrderStatusPending {
		return false
	}
	switch next {
	case OrderStatusPending, OrderStatusFinished, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Value implements driver.Valuer.
func (s OrderStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Scan implements sql.Scanner.
func (s *OrderStatus) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into OrderStatus", src)
	}
	status, err := ParseOrderStatus(raw)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// UnmarshalText lets JSON bodies carry "PENDING" or "pending".
func (s *OrderStatus) UnmarshalText(text []byte) error {
	status, err := ParseOrderStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// TransitionTo moves the order to next on behalf of an update. Cancelling
// goes through Cancel instead.
func (o *Order) TransitionTo(next OrderStatus) error {
	if next == OrderStatusCancelled || !o.Status.CanTransitionTo(next) {
		return apperror.InvalidStateTransition(string(o.Status), string(next))
	}
	o.Status = next
	return nil
}

// Cancel marks the order cancelled and zeroes its amount, returning the
// amount it held so the caller can restore stock.
func (o *Order) Cancel() (int, error) {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return 0, apperror.InvalidStateTransition(string(o.Status), string(OrderStatusCancelled))
	}
	restored := o.Amount
	o.Status = OrderStatusCancelled
	o.Amount = 0
	return restored, nil
}
