package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned by operations that cannot degrade to a cache miss.
var ErrUnavailable = errors.New("cache unavailable")

const (
	dialTimeout = 2 * time.Second
	ioTimeout   = 500 * time.Millisecond
)

// Client wraps redis.Client and fails safe: lookups against an unreachable
// redis are misses and writes are dropped. Nothing that must be correct
// (capacity, uniqueness) is read from here.
// A nil *Client is valid and behaves as an always-empty cache.
type Client struct {
	client *redis.Client
}

// New creates a new Redis client. It does not dial until first use.
func New(addr, password string, db int) *Client {
	return &Client{client: redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})}
}

func (c *Client) available() bool {
	return c != nil && c.client != nil
}

// Ping reports whether redis is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if !c.available() {
		return ErrUnavailable
	}
	return c.client.Ping(ctx).Err()
}

// Get returns the stored bytes, or nil on a miss or when redis is down.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if !c.available() {
		return nil, nil
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil and connection errors are both misses
		return nil, nil
	}
	return res, nil
}

// GetJSON decodes the value at key into dst and reports whether it was found.
// Undecodable entries count as misses.
func (c *Client) GetJSON(ctx context.Context, key string, dst any) bool {
	data, _ := c.Get(ctx, key)
	if data == nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// Set stores value with TTL. Redis errors are dropped.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !c.available() {
		return nil
	}
	_ = c.client.Set(ctx, key, value, ttl).Err()
	return nil
}

// SetJSON encodes v and stores it with TTL.
func (c *Client) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, payload, ttl)
}

// Delete removes keys. Redis errors are dropped.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if !c.available() || len(keys) == 0 {
		return nil
	}
	_ = c.client.Del(ctx, keys...).Err()
	return nil
}

// IncrWindow increments a counter that expires window after its first increment
// and returns the new count and remaining TTL. Unlike the other methods it reports
// redis failures so callers can fall back to another store.
func (c *Client) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if !c.available() {
		return 0, 0, ErrUnavailable
	}
	// the key is created with its TTL, so no counter outlives its window
	pipe := c.client.TxPipeline()
	pipe.SetNX(ctx, key, 0, window)
	incr := pipe.Incr(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	remaining := ttl.Val()
	if remaining <= 0 {
		remaining = window
	}
	return incr.Val(), remaining, nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if !c.available() {
		return nil
	}
	return c.client.Close()
}
