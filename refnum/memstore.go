package refnum

import (
	"context"
	"sync"
)

// MemStore keeps counters in memory. Single process only; state is lost on exit.
type MemStore struct {
	mu       sync.Mutex
	counters map[string]Counter
}

var (
	_ Store  = (*MemStore)(nil)
	_ Peeker = (*MemStore)(nil)
)

func NewMemStore() *MemStore {
	return &MemStore{counters: make(map[string]Counter)}
}

func (s *MemStore) Advance(ctx context.Context, key string, fn func(Counter) Counter) (Counter, error) {
	if err := ctx.Err(); err != nil {
		return Counter{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.counters[key]
	if err := cur.Validate(key); err != nil {
		return Counter{}, err
	}
	next := fn(cur)
	s.counters[key] = next
	return next, nil
}

func (s *MemStore) Peek(_ context.Context, key string) (Counter, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[key]
	return c, ok, nil
}

// Set overwrites a counter, e.g. to seed state in tests.
func (s *MemStore) Set(key string, c Counter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key] = c
}
