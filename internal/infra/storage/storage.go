// Package storage defines the persistent client-state interfaces the
// resilience layer depends on. Implementations live in subpackages; the
// integrity guard and remediator are written against these interfaces only
// and carry no knowledge of the backing technology.
package storage

import "context"

// KeyValueStore is a flat string key-value store. Keys are namespaced by
// convention with application/auth prefixes.
type KeyValueStore interface {
	// Get returns the value for key. The second return is false when the
	// key is absent; absence is not an error.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Keys returns every key starting with prefix. An empty prefix lists
	// all keys.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// SessionStore is the session-scoped store. The resilience layer only ever
// wipes it wholesale.
type SessionStore interface {
	Clear(ctx context.Context) error
}

// ObjectStores manages the named structured document stores known to the
// application.
type ObjectStores interface {
	ListStores(ctx context.Context) ([]string, error)
	DeleteStore(ctx context.Context, name string) error
}

// ContentCaches manages the named content caches known to the application.
type ContentCaches interface {
	ListCaches(ctx context.Context) ([]string, error)
	DeleteCache(ctx context.Context, name string) error
}
