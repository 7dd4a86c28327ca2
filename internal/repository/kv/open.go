// File: internal/repository/kv/open.go
package kv

import (
	"fmt"

	"gorm.io/gorm"
)

// Options carries what each backend kind needs; unused fields are ignored.
type Options struct {
	DB         *gorm.DB
	PebblePath string
	RedisURL   string
}

// Open constructs the backend named by kind.
func Open(kind Kind, opts Options) (Backend, error) {
	switch kind {
	case KindSQLite:
		return NewGormBackend(opts.DB)
	case KindPebble:
		return NewPebbleBackend(opts.PebblePath)
	case KindRedis:
		return NewRedisBackend(opts.RedisURL)
	case KindMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown kv backend %q", kind)
	}
}
