package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is the category of a fault, independent of any transport.
type Kind string

const (
	KindNotFound               Kind = "not_found"
	KindConflict               Kind = "conflict"
	KindInvalidStateTransition Kind = "invalid_state_transition"
	KindInvalidRequest         Kind = "invalid_request"
	KindDatabase               Kind = "database_error"
	KindInternal               Kind = "internal_error"
)

// Reason narrows a Kind. Only conflicts carry one.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonInsufficientStock Reason = "insufficient_stock"
	ReasonCancelFailed      Reason = "cancel_failed"
	ReasonStockUpdateFailed Reason = "stock_update_failed"
	ReasonDuplicate         Reason = "duplicate"
	ReasonAssociated        Reason = "associated"
)

// Error is built once per failure and never mutated afterwards.
type Error struct {
	Kind    Kind
	Reason  Reason
	Title   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Reason != ReasonNone {
		msg += "." + string(e.Reason)
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same kind and reason, so the exported
// sentinels work with errors.Is regardless of title or message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Reason == t.Reason
}

// Sentinels for errors.Is.
var (
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrInsufficientStock      = &Error{Kind: KindConflict, Reason: ReasonInsufficientStock}
	ErrCancelFailed           = &Error{Kind: KindConflict, Reason: ReasonCancelFailed}
	ErrStockUpdateFailed      = &Error{Kind: KindConflict, Reason: ReasonStockUpdateFailed}
	ErrDuplicate              = &Error{Kind: KindConflict, Reason: ReasonDuplicate}
	ErrAssociated             = &Error{Kind: KindConflict, Reason: ReasonAssociated}
	ErrInvalidStateTransition = &Error{Kind: KindInvalidStateTransition}
	ErrInvalidRequest         = &Error{Kind: KindInvalidRequest}
	ErrDatabase               = &Error{Kind: KindDatabase}
	ErrInternal               = &Error{Kind: KindInternal}
)

func NotFound(resource string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Title:   resource + " not found",
		Message: fmt.Sprintf("The %s you are trying to access does not exist.", strings.ToLower(resource)),
	}
}

func InsufficientStock() *Error {
	return &Error{
		Kind:    KindConflict,
		Reason:  ReasonInsufficientStock,
		Title:   "Insufficient stock",
		Message: "Insufficient stock for the requested product.",
	}
}

func CancelFailed(cause error) *Error {
	return &Error{
		Kind:    KindConflict,
		Reason:  ReasonCancelFailed,
		Title:   "Error canceling order",
		Message: "An error occurred while canceling the order.",
		Err:     cause,
	}
}

func StockUpdateFailed(message string) *Error {
	return &Error{
		Kind:    KindConflict,
		Reason:  ReasonStockUpdateFailed,
		Title:   "Error updating stock",
		Message: message,
	}
}

func Duplicate(message string) *Error {
	return &Error{
		Kind:    KindConflict,
		Reason:  ReasonDuplicate,
		Title:   "Duplicate resource",
		Message: message,
	}
}

func Associated(message string) *Error {
	return &Error{
		Kind:    KindConflict,
		Reason:  ReasonAssociated,
		Title:   "Resource in use",
		Message: message,
	}
}

func InvalidStateTransition(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidStateTransition,
		Title:   "Invalid status transition",
		Message: fmt.Sprintf("An order cannot move from %s to %s.", from, to),
	}
}

func InvalidRequest(message string) *Error {
	return &Error{
		Kind:    KindInvalidRequest,
		Title:   "Invalid data",
		Message: message,
	}
}

func Database(cause error) *Error {
	return &Error{
		Kind:    KindDatabase,
		Title:   "Database error",
		Message: "The database operation could not be completed.",
		Err:     cause,
	}
}

func Internal(cause error) *Error {
	return &Error{
		Kind:    KindInternal,
		Title:   "Server error",
		Message: "An unexpected internal error occurred. Please try again later.",
		Err:     cause,
	}
}

// From returns err as an *Error, classifying anything unknown as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// HTTPStatus maps a fault to the status code rendered by the API layer.
func HTTPStatus(err error) int {
	switch From(err).Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidStateTransition:
		return http.StatusConflict
	case KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
