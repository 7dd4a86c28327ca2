// File: internal/repository/kv/gorm_backend.go
package kv

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is the row layout of the SQL-backed store.
type Entry struct {
	Key       string `gorm:"column:item_key;primaryKey;size:255"`
	Value     string `gorm:"column:item_value;type:text;not null"`
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "kv_entries" }

type gormBackend struct {
	db *gorm.DB
}

// NewGormBackend migrates the kv_entries table and returns a Backend over db.
func NewGormBackend(db *gorm.DB) (Backend, error) {
	if db == nil {
		return nil, errors.New("gorm backend requires a database handle")
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate kv_entries: %w", err)
	}
	return &gormBackend{db: db}, nil
}

func (b *gormBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	var entry Entry
	err := b.db.WithContext(ctx).Where("item_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		log.Printf("[KVRepository] Database error reading key %s: %v", key, err)
		return "", false, fmt.Errorf("database error reading key: %w", err)
	}
	return entry.Value, true, nil
}

func (b *gormBackend) SetItem(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"item_value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		log.Printf("[KVRepository] Database error writing key %s: %v", key, err)
		return fmt.Errorf("database error writing key: %w", err)
	}
	return nil
}

func (b *gormBackend) RemoveItem(ctx context.Context, key string) error {
	if err := b.db.WithContext(ctx).Where("item_key = ?", key).Delete(&Entry{}).Error; err != nil {
		log.Printf("[KVRepository] Database error deleting key %s: %v", key, err)
		return fmt.Errorf("database error deleting key: %w", err)
	}
	return nil
}

// Close leaves the shared *gorm.DB open; its owner closes it.
func (b *gormBackend) Close() error { return nil }
