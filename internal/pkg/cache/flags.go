package cache

import (
	"context"
	"sync"
)

// FlagStore keeps sticky per-tenant boolean flags. A flag stays set until it
// is explicitly reset.
type FlagStore interface {
	IsSet(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// MemoryFlagStore is a process-local FlagStore.
type MemoryFlagStore struct {
	mu    sync.RWMutex
	flags map[string]struct{}
}

func NewMemoryFlagStore() *MemoryFlagStore {
	return &MemoryFlagStore{
		flags: make(map[string]struct{}),
	}
}

func (s *MemoryFlagStore) IsSet(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.flags[key]
	return ok, nil
}

func (s *MemoryFlagStore) Set(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flags[key] = struct{}{}
	return nil
}

func (s *MemoryFlagStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.flags, key)
	return nil
}

// Len returns the number of set flags.
func (s *MemoryFlagStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.flags)
}
