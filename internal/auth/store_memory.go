package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type MemStore struct {
	mu      sync.RWMutex
	byEmail map[string]User
	byID    map[string]string
	cost    int
}

var _ UserStore = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		byEmail: make(map[string]User),
		byID:    make(map[string]string),
		cost:    bcrypt.DefaultCost,
	}
}

// WithCost lowers the bcrypt cost, for tests.
func (s *MemStore) WithCost(cost int) *MemStore {
	s.cost = cost
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemStore) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	email := normalizeEmail(nu.Email)

	hash, err := bcrypt.GenerateFromPassword([]byte(normalizePassword(nu.Password)), s.cost)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return User{}, ErrEmailExists
	}

	u := User{
		ID:        nu.ID,
		Email:     email,
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Hash:      hash,
		Role:      nu.Role,
		CreatedAt: time.Now().UTC(),
	}
	s.byEmail[email] = u
	s.byID[u.ID] = email
	return u, nil
}

func (s *MemStore) Verify(ctx context.Context, email, password string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	email = normalizeEmail(email)

	s.mu.RLock()
	u, ok := s.byEmail[email]
	s.mu.RUnlock()

	if !ok {
		return User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(u.Hash, []byte(normalizePassword(password))); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return u, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	email, ok := s.byID[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return s.byEmail[email], nil
}
