package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"MiniShop/internal/catalog"
	"MiniShop/pkg/kit"
)

// Catalog is the part of catalog.Manager the cart needs.
type Catalog interface {
	Get(ctx context.Context, id int) (catalog.Product, error)
}

type Service struct {
	store   Store
	catalog Catalog
	log     *zap.Logger

	mu  sync.Mutex
	now func() time.Time
}

func NewService(store Store, cat Catalog, log *zap.Logger) *Service {
	return &Service{
		store:   store,
		catalog: cat,
		log:     kit.OrNop(log),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Ping(ctx context.Context) error { return s.store.Ping(ctx) }

// ForUser returns the user's cart, creating an empty one on first use.
func (s *Service) ForUser(ctx context.Context, userID string) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.GetByUser(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Cart{}, err
	}

	now := s.now()
	c = Cart{
		ID:        "c_" + uuid.NewString(),
		UserID:    userID,
		Items:     []Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return Cart{}, err
	}
	s.log.Info("cart created", zap.String("cart_id", c.ID), zap.String("user_id", userID))
	return c, nil
}

// Get returns the cart if userID owns it.
func (s *Service) Get(ctx context.Context, cartID, userID string) (Cart, error) {
	c, err := s.store.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	if c.UserID != userID {
		return Cart{}, ErrForbidden
	}
	return c, nil
}

// AddItem adds qty units of a catalog product, merging with an existing line.
func (s *Service) AddItem(ctx context.Context, cartID, userID string, productID, qty int) (Cart, error) {
	if qty <= 0 {
		return Cart{}, ErrBadQty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.Get(ctx, cartID, userID)
	if err != nil {
		return Cart{}, err
	}

	p, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return Cart{}, err
	}

	i := slices.IndexFunc(c.Items, func(it Item) bool { return it.ProductID == productID })
	want := qty
	if i >= 0 {
		want += c.Items[i].Qty
	}
	if want > p.Stock {
		return Cart{}, fmt.Errorf("%w: product %d has %d, want %d", ErrInsufficientStock, productID, p.Stock, want)
	}

	if i >= 0 {
		c.Items[i].Qty = want
	} else {
		c.Items = append(c.Items, Item{ProductID: productID, Qty: qty})
	}
	c.UpdatedAt = s.now()

	if err := s.store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

type Line struct {
	Product  catalog.Product `json:"product"`
	Qty      int             `json:"qty"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type View struct {
	Cart    Cart            `json:"cart"`
	Lines   []Line          `json:"lines"`
	Missing []int           `json:"missing,omitempty"`
	Total   decimal.Decimal `json:"total"`
}

// MarshalJSON keeps money as JSON numbers, like catalog.Product does.
func (l Line) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Product  catalog.Product `json:"product"`
		Qty      int             `json:"qty"`
		Subtotal json.Number     `json:"subtotal"`
	}{l.Product, l.Qty, catalog.PriceNumber(l.Subtotal)})
}

func (v View) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Cart    Cart        `json:"cart"`
		Lines   []Line      `json:"lines"`
		Missing []int       `json:"missing,omitempty"`
		Total   json.Number `json:"total"`
	}{v.Cart, v.Lines, v.Missing, catalog.PriceNumber(v.Total)})
}

// Price resolves every line against the current catalog. Products that have
// since been deleted are listed in Missing instead of failing the view.
func (s *Service) Price(ctx context.Context, c Cart) (View, error) {
	v := View{
		Cart:  c,
		Lines: make([]Line, 0, len(c.Items)),
		Total: decimal.Zero,
	}

	for _, it := range c.Items {
		p, err := s.catalog.Get(ctx, it.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			v.Missing = append(v.Missing, it.ProductID)
			continue
		}
		if err != nil {
			s.log.Warn("catalog lookup failed", zap.Error(err), zap.Int("product_id", it.ProductID))
			return View{}, err
		}

		sub := p.Price.Mul(decimal.NewFromInt(int64(it.Qty)))
		v.Lines = append(v.Lines, Line{Product: p, Qty: it.Qty, Subtotal: sub})
		v.Total = v.Total.Add(sub)
	}

	return v, nil
}
