package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Storage is an in-memory backing for every storage interface. It serves
// tests and the degraded mode where no Redis or database is configured.
type Storage struct {
	mu      sync.RWMutex
	kv      map[string]string
	session map[string]string
	objects map[string]map[string]string
	caches  map[string]map[string][]byte
}

// NewStorage creates an empty in-memory storage.
func NewStorage() *Storage {
	return &Storage{
		kv:      make(map[string]string),
		session: make(map[string]string),
		objects: make(map[string]map[string]string),
		caches:  make(map[string]map[string][]byte),
	}
}

// -----------------------------------------------------------------------------
// Key-value store
// -----------------------------------------------------------------------------

type KeyValueStore struct {
	store *Storage
}

func NewKeyValueStore(store *Storage) *KeyValueStore {
	return &KeyValueStore{store: store}
}

func (s *KeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	value, ok := s.store.kv[key]
	return value, ok, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key, value string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.kv[key] = value
	return nil
}

func (s *KeyValueStore) Delete(ctx context.Context, key string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	delete(s.store.kv, key)
	return nil
}

func (s *KeyValueStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	var keys []string
	for key := range s.store.kv {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// -----------------------------------------------------------------------------
// Session-scoped store
// -----------------------------------------------------------------------------

type SessionStore struct {
	store *Storage
}

func NewSessionStore(store *Storage) *SessionStore {
	return &SessionStore{store: store}
}

// Put stores a session-scoped value.
func (s *SessionStore) Put(ctx context.Context, key, value string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.session[key] = value
	return nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.session = make(map[string]string)
	return nil
}

// Len reports how many session-scoped entries exist.
func (s *SessionStore) Len() int {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return len(s.store.session)
}

// -----------------------------------------------------------------------------
// Named object stores
// -----------------------------------------------------------------------------

type ObjectStores struct {
	store *Storage
}

func NewObjectStores(store *Storage) *ObjectStores {
	return &ObjectStores{store: store}
}

// Put writes a document into a named store, creating the store on first use.
func (s *ObjectStores) Put(ctx context.Context, name, key, doc string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if s.store.objects[name] == nil {
		s.store.objects[name] = make(map[string]string)
	}
	s.store.objects[name][key] = doc
	return nil
}

func (s *ObjectStores) ListStores(ctx context.Context) ([]string, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	var names []string
	for name := range s.store.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *ObjectStores) DeleteStore(ctx context.Context, name string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	delete(s.store.objects, name)
	return nil
}

// -----------------------------------------------------------------------------
// Named content caches
// -----------------------------------------------------------------------------

type ContentCaches struct {
	store *Storage
}

func NewContentCaches(store *Storage) *ContentCaches {
	return &ContentCaches{store: store}
}

// Put writes an entry into a named cache, creating the cache on first use.
func (s *ContentCaches) Put(ctx context.Context, name, key string, value []byte) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if s.store.caches[name] == nil {
		s.store.caches[name] = make(map[string][]byte)
	}
	s.store.caches[name][key] = value
	return nil
}

func (s *ContentCaches) ListCaches(ctx context.Context) ([]string, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	var names []string
	for name := range s.store.caches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *ContentCaches) DeleteCache(ctx context.Context, name string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	delete(s.store.caches, name)
	return nil
}
