package redisstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// KeyValueStore implements storage.KeyValueStore on Redis.
type KeyValueStore struct {
	client *Client
}

// NewKeyValueStore creates a key-value store over client.
func NewKeyValueStore(client *Client) *KeyValueStore {
	return &KeyValueStore{client: client}
}

func (s *KeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.rdb.Get(ctx, s.client.kvKey(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get failed: %w", err)
	}
	return val, true, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.rdb.Set(ctx, s.client.kvKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}

func (s *KeyValueStore) Delete(ctx context.Context, key string) error {
	if err := s.client.rdb.Del(ctx, s.client.kvKey(key)).Err(); err != nil {
		return fmt.Errorf("del failed: %w", err)
	}
	return nil
}

// Keys lists logical keys under prefix, with the namespace stripped.
func (s *KeyValueStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	pattern := s.client.kvKey(prefix) + "*"
	stripped := s.client.kvKey("")

	var keys []string
	iter := s.client.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), stripped))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	return keys, nil
}
