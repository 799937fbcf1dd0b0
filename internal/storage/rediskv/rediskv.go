// Package rediskv wraps the shared expiring key-value store that keeps
// rate-limiter state consistent across request handlers and processes.
package rediskv

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	C *redis.Client
}

func New(addr string, db int) *Client {
	return &Client{C: redis.NewClient(&redis.Options{Addr: addr, DB: db})}
}

func (c *Client) Ping(ctx context.Context) error { return c.C.Ping(ctx).Err() }
func (c *Client) Close() error                   { return c.C.Close() }

// SetNX arms key atomically; returns false when it was already set.
func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	return c.C.SetNX(ctx, key, value, ttl).Result()
}

// TTL returns the remaining lifetime of key; negative when absent.
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	return c.C.TTL(ctx, key).Result()
}
