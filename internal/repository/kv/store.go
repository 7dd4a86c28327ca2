// File: internal/repository/kv/store.go
package kv

import (
	"context"
	"encoding/json"
	"fmt"
)

// Logical keys of the persisted layout. Physical keys are "{logical}_{username}".
const (
	KeyConversations = "conversations"
	KeyCurrentChat   = "current_chat"
	KeyTrash         = "trash"
)

// Store namespaces a Backend by username and treats every write as best
// effort: failures are logged and reported as false, never returned.
type Store struct {
	backend Backend
	logger  Logger
}

func NewStore(backend Backend, logger Logger) *Store {
	return &Store{backend: backend, logger: logger}
}

// Key composes the physical key for a logical key and username.
func Key(logical, username string) string {
	return logical + "_" + username
}

// Save serializes value as JSON (strings are stored raw) and writes it.
func (s *Store) Save(ctx context.Context, logical, username string, value interface{}) bool {
	key := Key(logical, username)

	var payload string
	if str, ok := value.(string); ok {
		payload = str
	} else {
		data, err := json.Marshal(value)
		if err != nil {
			s.logger.Error("kv serialize failed", "key", key, "error", err)
			return false
		}
		payload = string(data)
	}

	if err := s.backend.SetItem(ctx, key, payload); err != nil {
		s.logger.Error("kv write failed", "key", key, "bytes", len(payload), "error", err)
		return false
	}
	s.logger.Debug("kv write", "key", key, "bytes", len(payload))
	return true
}

// LoadString returns the raw value, or def when the key is missing or unreadable.
func (s *Store) LoadString(ctx context.Context, logical, username, def string) string {
	v, err := s.ReadString(ctx, logical, username, def)
	if err != nil {
		s.logger.Error("kv read failed", "key", Key(logical, username), "error", err)
		return def
	}
	return v
}

// ReadString is LoadString for callers that must tell a missing key from a
// failed read: only the latter returns an error.
func (s *Store) ReadString(ctx context.Context, logical, username, def string) (string, error) {
	key := Key(logical, username)
	v, found, err := s.backend.GetItem(ctx, key)
	if err != nil {
		return def, fmt.Errorf("read %s: %w", key, err)
	}
	if !found || v == "" {
		return def, nil
	}
	return v, nil
}

// Remove deletes the key; deleting a missing key is not an error.
func (s *Store) Remove(ctx context.Context, logical, username string) bool {
	key := Key(logical, username)
	if err := s.backend.RemoveItem(ctx, key); err != nil {
		s.logger.Error("kv remove failed", "key", key, "error", err)
		return false
	}
	return true
}

// LoadList decodes a JSON array. A missing key, read error or malformed
// payload yields an empty, non-nil slice.
func LoadList[T any](ctx context.Context, s *Store, logical, username string) []T {
	out, err := ReadList[T](ctx, s, logical, username)
	if err != nil {
		s.logger.Error("kv read failed", "key", Key(logical, username), "error", err)
		return []T{}
	}
	return out
}

// ReadList is LoadList for callers that must not mistake a failed read for
// an empty list. Missing keys and malformed payloads still decode as empty.
func ReadList[T any](ctx context.Context, s *Store, logical, username string) ([]T, error) {
	key := Key(logical, username)
	out := []T{}

	v, found, err := s.backend.GetItem(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if !found || v == "" {
		return out, nil
	}

	var decoded []T
	if err := json.Unmarshal([]byte(v), &decoded); err != nil {
		s.logger.Warn("kv payload is not a valid list, using empty default", "key", key, "error", err)
		return out, nil
	}
	if decoded == nil {
		return out, nil
	}
	return decoded, nil
}
