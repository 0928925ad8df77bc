package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"magnolia/contexts/commerce-attribution/click-service/domain/entities"
)

// Store is the in-memory adapter backing module tests.
type Store struct {
	mu sync.Mutex

	clicks []entities.LinkClick

	idSeq int
	now   time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now().UTC()}
}

// SetNow pins the clock for deterministic tests.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now.UTC()
}

func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *Store) NewID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idSeq++
	return fmt.Sprintf("id-%04d", s.idSeq), nil
}

func (s *Store) Append(_ context.Context, click entities.LinkClick) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clicks = append(s.clicks, click)
	return nil
}

// Clicks returns a snapshot for test assertions.
func (s *Store) Clicks() []entities.LinkClick {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.LinkClick, len(s.clicks))
	copy(items, s.clicks)
	return items
}
