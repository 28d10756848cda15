package cache

import (
	"context"
	"sync"
	"time"

	"github.com/saleledger/backend/internal/domain/shared"
)

const sweepEvery = 5 * time.Minute

// InMemoryIdempotencyStore keeps claimed keys in process memory, so it only
// deduplicates within one server. Expired keys are dropped lazily: reads
// ignore them and a write sweeps the map at most once per sweepEvery.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	expiry    map[string]time.Time
	lastSweep time.Time
	now       func() time.Time
}

func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{
		expiry:    make(map[string]time.Time),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// MarkProcessed claims key for ttl. It reports false while an earlier claim
// is still live.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= sweepEvery {
		s.sweep(now)
	}
	if exp, ok := s.expiry[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.expiry[key] = now.Add(ttl)
	return true, nil
}

func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expiry[key]
	return ok && s.now().Before(exp), nil
}

func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.expiry, key)
	s.mu.Unlock()
	return nil
}

// Close is a no-op; the store owns no goroutines.
func (s *InMemoryIdempotencyStore) Close() error {
	return nil
}

// Size counts stored keys, expired ones included until the next sweep.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expiry)
}

// caller holds mu
func (s *InMemoryIdempotencyStore) sweep(now time.Time) {
	for key, exp := range s.expiry {
		if !now.Before(exp) {
			delete(s.expiry, key)
		}
	}
	s.lastSweep = now
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
