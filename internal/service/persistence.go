package service

import (
	"context"
	"errors"
	"time"

	"fast-order/internal/apperror"
	"fast-order/internal/store"
	"fast-order/internal/util"
)

const defaultPersistenceTimeout = 3 * time.Second

// persist runs one store call under its own deadline and records latency.
func persist[T any](ctx context.Context, timeout time.Duration, op string, fn func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		timeout = defaultPersistenceTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		util.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	return fn(ctx)
}

// persistExec is persist for calls that only return an error.
func persistExec(ctx context.Context, timeout time.Duration, op string, fn func(context.Context) error) error {
	_, err := persist(ctx, timeout, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// storeErr translates a store error into a fault naming resource.
func storeErr(err error, resource string) error {
	var appErr *apperror.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, store.ErrNotFound):
		return apperror.NotFound(resource)
	case errors.Is(err, store.ErrUniqueViolation):
		return apperror.Duplicate("A " + lowerFirst(resource) + " with the same unique data already exists.")
	case errors.Is(err, store.ErrForeignKeyViolation):
		return apperror.Associated("The " + lowerFirst(resource) + " is referenced by other records.")
	default:
		return apperror.Database(err)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
