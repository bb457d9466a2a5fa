package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"MiniShop/pkg/kit"
)

// Manager owns the in-memory product sequence. Every operation reloads the
// catalog from the Store first, so the file on disk stays the authoritative
// copy; the mutex only serializes callers inside this process.
type Manager struct {
	mu       sync.Mutex
	store    Store
	log      *zap.Logger
	metrics  *Metrics
	products []Product
	removed  []Product
}

type Option func(*Manager)

func WithMetrics(m *Metrics) Option {
	return func(mg *Manager) { mg.metrics = m }
}

func NewManager(store Store, log *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		log:   kit.OrNop(log),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Init loads the catalog and the archive. It must be called once before the
// manager serves traffic so that unreadable files fail at startup.
func (m *Manager) Init(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.reload(ctx); err != nil {
		return err
	}
	if err := m.reloadArchive(ctx); err != nil {
		return err
	}
	m.log.Info("catalog loaded",
		zap.Int("products", len(m.products)),
		zap.Int("removed", len(m.removed)),
	)
	return nil
}

func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}

// Add validates p and appends it. Checks run in order: duplicate code, a
// negative id, duplicate id, missing fields. A rejected product leaves the
// catalog untouched.
func (m *Manager) Add(ctx context.Context, p Product) (out Product, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer func() { m.metrics.observe("add", err, len(m.products)) }()

	if err := m.reload(ctx); err != nil {
		return Product{}, err
	}

	if m.indexByCode(p.Code) >= 0 {
		m.log.Info("product code already exists", zap.String("code", p.Code))
		return Product{}, fmt.Errorf("%w: %q", ErrDuplicateCode, p.Code)
	}
	if p.ID < 0 {
		m.log.Info("product id is negative", zap.Int("id", p.ID))
		return Product{}, fmt.Errorf("%w: %d", ErrInvalidID, p.ID)
	}
	if m.indexByID(p.ID) >= 0 {
		m.log.Info("product id already exists", zap.Int("id", p.ID))
		return Product{}, fmt.Errorf("%w: %d", ErrDuplicateID, p.ID)
	}
	if missing := missingFields(p); len(missing) > 0 {
		m.log.Info("product is missing fields", zap.Strings("fields", missing))
		return Product{}, &MissingFieldsError{Fields: missing}
	}

	next := append(slices.Clip(m.products), p.clone())
	if err := m.persist(ctx, next); err != nil {
		return Product{}, err
	}

	m.log.Info("product added", zap.Int("id", p.ID), zap.String("title", p.Title))
	return p.clone(), nil
}

func (m *Manager) List(ctx context.Context) (out []Product, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer func() { m.metrics.observe("list", err, len(m.products)) }()

	if err := m.reload(ctx); err != nil {
		return nil, err
	}
	return cloneAll(m.products), nil
}

func (m *Manager) Get(ctx context.Context, id int) (out Product, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer func() { m.metrics.observe("get", err, len(m.products)) }()

	if err := m.reload(ctx); err != nil {
		return Product{}, err
	}
	if id == 0 {
		return Product{}, ErrInvalidID
	}

	i := m.indexByID(id)
	if i < 0 {
		return Product{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return m.products[i].clone(), nil
}

// Update overlays patch on the product with the given id and writes the result
// back at the same position.
func (m *Manager) Update(ctx context.Context, id int, patch Patch) (out Product, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer func() { m.metrics.observe("update", err, len(m.products)) }()

	if id == 0 {
		m.log.Info("update without product id")
		return Product{}, ErrInvalidID
	}
	if err := m.reload(ctx); err != nil {
		return Product{}, err
	}

	i := m.indexByID(id)
	if i < 0 {
		m.log.Info("product to update not found", zap.Int("id", id))
		return Product{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	merged := patch.Apply(m.products[i])
	if merged.Code != m.products[i].Code {
		if j := m.indexByCode(merged.Code); j >= 0 && j != i {
			m.log.Info("product code already exists", zap.String("code", merged.Code))
			return Product{}, fmt.Errorf("%w: %q", ErrDuplicateCode, merged.Code)
		}
	}

	next := cloneAll(m.products)
	next[i] = merged
	if err := m.persist(ctx, next); err != nil {
		return Product{}, err
	}

	m.log.Info("product updated", zap.Int("id", id))
	return merged.clone(), nil
}

// Delete removes the product with the given id and appends it to the archive.
// When only the archive write fails the product is still gone: it is returned
// together with ErrArchive.
func (m *Manager) Delete(ctx context.Context, id int) (out Product, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer func() { m.metrics.observe("delete", err, len(m.products)) }()

	if id == 0 {
		m.log.Info("delete without product id")
		return Product{}, ErrInvalidID
	}
	if err := m.reload(ctx); err != nil {
		return Product{}, err
	}
	if err := m.reloadArchive(ctx); err != nil {
		return Product{}, err
	}

	i := m.indexByID(id)
	if i < 0 {
		m.log.Info("product to delete not found", zap.Int("id", id))
		return Product{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	removed := m.products[i].clone()
	next := slices.Delete(cloneAll(m.products), i, i+1)
	if err := m.persist(ctx, next); err != nil {
		return Product{}, err
	}

	archive := append(slices.Clip(m.removed), removed)
	if err := m.store.SaveArchive(ctx, archive); err != nil {
		m.log.Error("archive removed product failed", zap.Int("id", removed.ID), zap.Error(err))
		return removed, fmt.Errorf("%w: %w", ErrArchive, err)
	}
	m.removed = archive

	m.log.Info("product deleted", zap.Int("id", removed.ID), zap.String("title", removed.Title))
	return removed, nil
}

// Removed returns the products deleted so far, oldest first. Like every other
// read it goes back to the archive file first.
func (m *Manager) Removed(ctx context.Context) (out []Product, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer func() { m.metrics.observe("removed", err, len(m.products)) }()

	if err := m.reloadArchive(ctx); err != nil {
		return nil, err
	}
	return cloneAll(m.removed), nil
}

func (m *Manager) reload(ctx context.Context) error {
	products, err := m.store.Load(ctx)
	if err != nil {
		m.log.Error("load catalog failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	m.products = products
	return nil
}

func (m *Manager) reloadArchive(ctx context.Context) error {
	removed, err := m.store.LoadArchive(ctx)
	if err != nil {
		m.log.Error("load archive failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	m.removed = removed
	return nil
}

// persist saves next and adopts it only when the save succeeded.
func (m *Manager) persist(ctx context.Context, next []Product) error {
	if err := m.store.Save(ctx, next); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	m.products = next
	return nil
}

func (m *Manager) indexByID(id int) int {
	return slices.IndexFunc(m.products, func(p Product) bool { return p.ID == id })
}

func (m *Manager) indexByCode(code string) int {
	return slices.IndexFunc(m.products, func(p Product) bool { return p.Code == code })
}
