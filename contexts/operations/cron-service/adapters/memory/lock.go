package memory

import (
	"context"
	"sync"
	"time"

	"magnolia/contexts/operations/cron-service/domain/entities"
)

// LockStore is the in-memory lock table. It mirrors the insert-or-steal
// semantics of the postgres adapter.
type LockStore struct {
	mu    sync.Mutex
	locks map[string]entities.CronLock
	now   time.Time
}

func NewLockStore() *LockStore {
	return &LockStore{
		locks: make(map[string]entities.CronLock),
		now:   time.Date(2024, 5, 1, 8, 15, 0, 0, time.UTC),
	}
}

func (s *LockStore) Acquire(_ context.Context, job string, holder string, ttl time.Duration, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, exists := s.locks[job]
	if exists && !existing.Expired(now) && existing.Holder != holder {
		return false, nil
	}
	s.locks[job] = entities.CronLock{Job: job, Holder: holder, ExpiresAt: now.Add(ttl)}
	return true, nil
}

func (s *LockStore) Release(_ context.Context, job string, holder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, exists := s.locks[job]; exists && existing.Holder == holder {
		delete(s.locks, job)
	}
	return nil
}

// Held reports whether the named lock currently exists, for tests.
func (s *LockStore) Held(job string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.locks[job]
	return exists
}

func (s *LockStore) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *LockStore) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
