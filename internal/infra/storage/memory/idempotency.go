package memory

import (
	"context"
	"sync"
	"time"

	"healthtrack/internal/app/middleware"
)

// IdempotencyStore remembers command outcomes for the sqlite and memory
// drivers. With a positive ttl, stale records are invisible to Get and are
// pruned on every Save.
type IdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	records map[string]middleware.IdempotencyRecord
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{ttl: ttl, records: make(map[string]middleware.IdempotencyRecord)}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok || s.stale(rec, time.Now()) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	return rec, true, nil
}

func (s *IdempotencyStore) Save(_ context.Context, rec middleware.IdempotencyRecord) error {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, old := range s.records {
		if s.stale(old, now) {
			delete(s.records, key)
		}
	}
	if !s.stale(rec, now) {
		s.records[rec.Key] = rec
	}
	return nil
}

// Len counts records currently held.
func (s *IdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *IdempotencyStore) stale(rec middleware.IdempotencyRecord, now time.Time) bool {
	return s.ttl > 0 && now.Sub(rec.OccurredAt) > s.ttl
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
