// File: internal/repository/kv/pebble_backend.go
package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

type pebbleBackend struct {
	db *pebble.DB
}

// NewPebbleBackend opens (or creates) a Pebble database at path.
func NewPebbleBackend(path string) (Backend, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", path, err)
	}
	return &pebbleBackend{db: db}, nil
}

func (b *pebbleBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, closer, err := b.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	defer closer.Close()
	// v is only valid until closer.Close.
	return string(v), true, nil
}

func (b *pebbleBackend) SetItem(ctx context.Context, key, value string) error {
	return b.db.Set([]byte(key), []byte(value), pebble.Sync)
}

func (b *pebbleBackend) RemoveItem(ctx context.Context, key string) error {
	return b.db.Delete([]byte(key), pebble.Sync)
}

func (b *pebbleBackend) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}
