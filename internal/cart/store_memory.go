package cart

import (
	"context"
	"slices"
	"sync"
)

type MemStore struct {
	mu     sync.RWMutex
	m      map[string]Cart
	byUser map[string]string
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		m:      map[string]Cart{},
		byUser: map[string]string{},
	}
}

func (s *MemStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemStore) Create(_ context.Context, c Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Items = slices.Clone(c.Items)
	s.m[c.ID] = c
	if c.UserID != "" {
		s.byUser[c.UserID] = c.ID
	}
	return nil
}

func (s *MemStore) Get(_ context.Context, id string) (Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.m[id]
	if !ok {
		return Cart{}, ErrNotFound
	}
	c.Items = slices.Clone(c.Items)
	return c, nil
}

func (s *MemStore) GetByUser(ctx context.Context, userID string) (Cart, error) {
	s.mu.RLock()
	id, ok := s.byUser[userID]
	s.mu.RUnlock()
	if !ok {
		return Cart{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *MemStore) Save(_ context.Context, c Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[c.ID]; !ok {
		return ErrNotFound
	}
	c.Items = slices.Clone(c.Items)
	s.m[c.ID] = c
	return nil
}
