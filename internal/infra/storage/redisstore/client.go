// Package redisstore implements the persistent storage interfaces on Redis.
// Logical keys keep their application/auth prefixes; the client only adds a
// deployment namespace so several environments can share one instance.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration.
type Config struct {
	URL       string `yaml:"url"`
	Password  string `yaml:"password"`
	Namespace string `yaml:"namespace"`
}

// Client wraps the Redis connection shared by the storage layers.
type Client struct {
	rdb       *redis.Client
	namespace string
}

// NewClient creates a new Redis client and verifies connectivity.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "sentinel"
	}

	return &Client{rdb: rdb, namespace: namespace}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Key helpers
func (c *Client) kvKey(key string) string {
	return fmt.Sprintf("%s:kv:%s", c.namespace, key)
}

func (c *Client) sessionKeyPattern() string {
	return fmt.Sprintf("%s:session:*", c.namespace)
}

func (c *Client) cacheRegistryKey() string {
	return fmt.Sprintf("%s:caches", c.namespace)
}

func (c *Client) cacheKey(name string) string {
	return fmt.Sprintf("%s:cache:%s", c.namespace, name)
}

// deleteByPattern scans for keys matching pattern and deletes them in
// batches. SCAN keeps the server responsive on large keyspaces where KEYS
// would block.
func (c *Client) deleteByPattern(ctx context.Context, pattern string) error {
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= 100 {
			if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("del failed: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	if len(batch) > 0 {
		if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("del failed: %w", err)
		}
	}
	return nil
}
