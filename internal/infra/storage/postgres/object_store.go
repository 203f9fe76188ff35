package postgres

import (
	"context"
	"fmt"
)

// ObjectStores implements storage.ObjectStores using PostgreSQL. Stores are
// rows in a catalog table; documents live in a single objects table keyed by
// store name, so deleting a store is two statements in one transaction.
type ObjectStores struct {
	db *DB
}

// NewObjectStores creates an object store manager over db.
func NewObjectStores(db *DB) *ObjectStores {
	return &ObjectStores{db: db}
}

// Put upserts a document into a named store, registering the store in the
// catalog on first use.
func (s *ObjectStores) Put(ctx context.Context, name, key string, doc []byte) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO object_stores (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
		return fmt.Errorf("register store: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO objects (store_name, key, doc) VALUES ($1, $2, $3)
		 ON CONFLICT (store_name, key) DO UPDATE SET doc = EXCLUDED.doc`, name, key, doc); err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return tx.Commit()
}

// ListStores returns every registered store name.
func (s *ObjectStores) ListStores(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names,
		`SELECT name FROM object_stores ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return names, nil
}

// DeleteStore removes a store and all of its documents.
func (s *ObjectStores) DeleteStore(ctx context.Context, name string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM objects WHERE store_name = $1`, name); err != nil {
		return fmt.Errorf("delete objects: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM object_stores WHERE name = $1`, name); err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	return tx.Commit()
}
