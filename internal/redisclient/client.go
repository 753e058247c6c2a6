package redisclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client wraps Redis access for session carts. Each cart lives in a hash
// keyed by session ID, with one field per cart entry and the quantity as
// the field value.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient creates a new Redis client and verifies connectivity
func NewClient(addr, password string, db int, cartTTL time.Duration) (*Client, error) {
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

	return &Client{rdb: rdb, ttl: cartTTL}, nil
}

// Ping checks the Redis connection
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

// GetCart loads the cart hash for a session. A missing key yields an empty
// cart; fields with non-numeric values are dropped.
func (c *Client) GetCart(ctx context.Context, sessionID string) (map[string]int, error) {
	result, err := c.rdb.HGetAll(ctx, cartKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	cart := make(map[string]int, len(result))
	for field, raw := range result {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		cart[field] = qty
	}
	return cart, nil
}

// SaveCart replaces the cart hash for a session and refreshes its TTL.
// Saving an empty cart deletes the key.
func (c *Client) SaveCart(ctx context.Context, sessionID string, entries map[string]int) error {
	key := cartKey(sessionID)

	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, key)
	if len(entries) > 0 {
		fields := make(map[string]interface{}, len(entries))
		for k, qty := range entries {
			fields[k] = qty
		}
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// ClearCart removes the cart for a session
func (c *Client) ClearCart(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, cartKey(sessionID)).Err()
}
