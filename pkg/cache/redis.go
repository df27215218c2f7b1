package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client holds the Redis client
type Client struct {
	Redis *redis.Client
}

// NewClient creates a new Redis client
func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed connecting to redis: %w", err)
	}

	return &Client{
		Redis: client,
	}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.Redis.Close()
}

// Set sets a key-value pair with expiration
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.Redis.Set(ctx, key, value, expiration).Err()
}

// Get gets a value by key
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.Redis.Get(ctx, key).Result()
}

// Delete deletes a key
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	return c.Redis.Del(ctx, keys...).Err()
}

// PushCapped prepends a value to a list and trims it to capacity.
// Used for the newest-first activity feed.
func (c *Client) PushCapped(ctx context.Context, key string, value interface{}, capacity int) error {
	pipe := c.Redis.TxPipeline()
	pipe.LPush(ctx, key, value)
	pipe.LTrim(ctx, key, 0, int64(capacity-1))
	_, err := pipe.Exec(ctx)
	return err
}

// ListRange returns list entries from start to stop inclusive
func (c *Client) ListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return c.Redis.LRange(ctx, key, start, stop).Result()
}
