// File: internal/repository/kv/backend.go
package kv

import (
	"context"
	"fmt"
	"strings"
)

// Backend is a durable string-to-string store. Implementations must be safe
// for concurrent use.
type Backend interface {
	// GetItem returns found=false with a nil error when the key is absent.
	GetItem(ctx context.Context, key string) (value string, found bool, err error)
	SetItem(ctx context.Context, key, value string) error
	// RemoveItem succeeds when the key is already absent.
	RemoveItem(ctx context.Context, key string) error
	Close() error
}

// Logger is the logging interface used by the persistence layer.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Kind names a backend implementation.
type Kind string

const (
	KindSQLite Kind = "sqlite"
	KindPebble Kind = "pebble"
	KindRedis  Kind = "redis"
	KindMemory Kind = "memory"
)

// ParseKind normalizes a configured backend name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindSQLite, nil
	case KindSQLite, KindPebble, KindRedis, KindMemory:
		return k, nil
	default:
		return "", fmt.Errorf("unknown kv backend %q", s)
	}
}
