package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient creates a new Redis client; ttl applies to every key it writes
func NewClient(addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks the connection, used by the readiness probe
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// LookupOrder returns the order bound to an idempotency key, if any.
func (c *Client) LookupOrder(ctx context.Context, key string) (uuid.UUID, bool, error) {
	val, err := c.rdb.Get(ctx, idempotencyKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("idempotency lookup failed: %w", err)
	}

	orderID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("corrupt idempotency value for %s: %w", key, err)
	}
	return orderID, true, nil
}

// BindOrder associates an idempotency key with an order. The first binding wins.
func (c *Client) BindOrder(ctx context.Context, key string, orderID uuid.UUID) error {
	if err := c.rdb.SetNX(ctx, idempotencyKey(key), orderID.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency bind failed: %w", err)
	}
	return nil
}

// IsEventProcessed reports whether an event id was already marked.
func (c *Client) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := c.rdb.Exists(ctx, eventKey(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("event dedupe lookup failed: %w", err)
	}
	return n > 0, nil
}

// MarkEventProcessed records an event id and reports whether this call was
// the first to see it.
func (c *Client) MarkEventProcessed(ctx context.Context, eventID string) (bool, error) {
	first, err := c.rdb.SetNX(ctx, eventKey(eventID), "1", c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("event dedupe failed: %w", err)
	}
	return first, nil
}

func eventKey(eventID string) string {
	return fmt.Sprintf("notification:%s", eventID)
}

func idempotencyKey(key string) string {
	return fmt.Sprintf("idempotency:%s", key)
}
