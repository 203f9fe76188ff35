package redisstore

import (
	"context"
	"fmt"
)

// ContentCaches implements storage.ContentCaches on Redis. Cache names are
// tracked in a registry set so remediation can enumerate them without
// scanning the whole keyspace.
type ContentCaches struct {
	client *Client
}

// NewContentCaches creates a content cache manager over client.
func NewContentCaches(client *Client) *ContentCaches {
	return &ContentCaches{client: client}
}

// Put writes an entry into a named cache, registering the cache on first
// use.
func (c *ContentCaches) Put(ctx context.Context, name, key string, value []byte) error {
	if err := c.client.rdb.SAdd(ctx, c.client.cacheRegistryKey(), name).Err(); err != nil {
		return fmt.Errorf("register cache: %w", err)
	}
	full := fmt.Sprintf("%s:%s", c.client.cacheKey(name), key)
	if err := c.client.rdb.Set(ctx, full, value, 0).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}

// ListCaches returns every registered cache name.
func (c *ContentCaches) ListCaches(ctx context.Context) ([]string, error) {
	names, err := c.client.rdb.SMembers(ctx, c.client.cacheRegistryKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers failed: %w", err)
	}
	return names, nil
}

// DeleteCache removes a cache's entries and its registration.
func (c *ContentCaches) DeleteCache(ctx context.Context, name string) error {
	if err := c.client.deleteByPattern(ctx, c.client.cacheKey(name)+":*"); err != nil {
		return err
	}
	if err := c.client.rdb.SRem(ctx, c.client.cacheRegistryKey(), name).Err(); err != nil {
		return fmt.Errorf("srem failed: %w", err)
	}
	return nil
}
