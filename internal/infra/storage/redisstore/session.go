package redisstore

import (
	"context"
	"fmt"
)

// SessionStore implements storage.SessionStore on Redis. Entries live under
// the session namespace and are only ever wiped wholesale by the
// remediator.
type SessionStore struct {
	client *Client
}

// NewSessionStore creates a session-scoped store over client.
func NewSessionStore(client *Client) *SessionStore {
	return &SessionStore{client: client}
}

// Put stores a session-scoped value with no TTL; the entry lives until the
// next Clear.
func (s *SessionStore) Put(ctx context.Context, key, value string) error {
	full := fmt.Sprintf("%s:session:%s", s.client.namespace, key)
	if err := s.client.rdb.Set(ctx, full, value, 0).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}

// Clear removes every session-scoped entry.
func (s *SessionStore) Clear(ctx context.Context) error {
	return s.client.deleteByPattern(ctx, s.client.sessionKeyPattern())
}
