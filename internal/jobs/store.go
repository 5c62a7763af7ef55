package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	DefaultTTL = 24 * time.Hour

	keyPrefix = "eval_job:"
)

var ErrJobNotFound = errors.New("job not found")

// KV is an expiring key/value store. Expired keys must read as absent.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store persists job records. Every Put rewrites the whole record and restarts its TTL.
type Store struct {
	kv  KV
	ttl time.Duration
}

func NewStore(kv KV, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{kv: kv, ttl: ttl}
}

func jobKey(id string) string {
	return keyPrefix + id
}

func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	data, ok, err := s.kv.Get(ctx, jobKey(id))
	if err != nil {
		return nil, fmt.Errorf("error loading job %s: %w", id, err)
	}
	if !ok {
		return nil, ErrJobNotFound
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("error decoding job %s: %w", id, err)
	}
	return &record, nil
}

func (s *Store) Put(ctx context.Context, record *Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("error encoding job %s: %w", record.Id, err)
	}
	if err := s.kv.Set(ctx, jobKey(record.Id), data, s.ttl); err != nil {
		return fmt.Errorf("error saving job %s: %w", record.Id, err)
	}
	return nil
}
