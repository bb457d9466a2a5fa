package catalog

import (
	"context"
	"sync"
)

// MemStore is a Store without a disk behind it.
type MemStore struct {
	mu       sync.RWMutex
	products []Product
	removed  []Product
}

var _ Store = (*MemStore)(nil)

func NewMemStore(seed ...Product) *MemStore {
	return &MemStore{products: cloneAll(seed)}
}

func (s *MemStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemStore) Load(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.products), nil
}

func (s *MemStore) Save(ctx context.Context, products []Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = cloneAll(products)
	return nil
}

func (s *MemStore) LoadArchive(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.removed), nil
}

func (s *MemStore) SaveArchive(ctx context.Context, removed []Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = cloneAll(removed)
	return nil
}
