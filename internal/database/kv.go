package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVStore is an expiring key/value store on top of the kv_entries table. Expired entries
// read as absent; DeleteExpired reclaims their rows.
type KVStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewKVStore(db *gorm.DB) *KVStore {
	return &KVStore{db: db, now: time.Now}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry KVEntry
	err := s.db.WithContext(ctx).
		Where(&KVEntry{Key: key}).
		Where("expires_at > ?", s.now().UTC()).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error reading key %s: %w", key, err)
	}
	return entry.Value, true, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := KVEntry{Key: key, Value: value, ExpiresAt: s.now().UTC().Add(ttl)}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at"}),
	}).Create(&entry).Error; err != nil {
		return fmt.Errorf("error writing key %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) DeleteExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at <= ?", s.now().UTC()).Delete(&KVEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("error deleting expired entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}
